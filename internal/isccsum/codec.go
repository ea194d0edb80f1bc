package isccsum

import "encoding/base32"

// Header bytes identify the code type and body length so codes are
// self-describing. Layout: main type / sub type in the first byte, version
// and length marker in the second.
const (
	mainTypeSum      = 0x50
	mainTypeData     = 0x30
	mainTypeInstance = 0x40

	length64  = 0x01
	length128 = 0x02
)

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func header(mainType, lengthMarker byte) []byte {
	return []byte{mainType, lengthMarker}
}

func headerSum(wide bool) []byte {
	return header(mainTypeSum, lengthByte(wide))
}

func headerData(wide bool) []byte {
	return header(mainTypeData, lengthByte(wide))
}

func headerInstance(wide bool) []byte {
	return header(mainTypeInstance, lengthByte(wide))
}

func lengthByte(wide bool) byte {
	if wide {
		return length128
	}
	return length64
}

func encodeCode(header, body []byte) string {
	payload := make([]byte, 0, len(header)+len(body))
	payload = append(payload, header...)
	payload = append(payload, body...)
	return "ISCC:" + codeEncoding.EncodeToString(payload)
}
