package processor

import (
	"time"

	"isccd/internal/isccsum"
	"isccd/internal/omero"
)

// BuildRecord assembles the annotation persisted for a committed asset.
// The unit codes ride in the extension map so the fixed key layout stays
// compatible with existing readers.
func BuildRecord(asset omero.AssetRef, result isccsum.Result, identity string, now time.Time) omero.Record {
	record := omero.Record{
		Code:       result.ISCC,
		Version:    isccsum.RecordVersion,
		SourceFile: asset.Name,
		Timestamp:  now.UTC(),
		Processor:  identity,
	}
	if result.DataCode != "" || result.InstCode != "" {
		record.Extra = map[string]string{}
		if result.DataCode != "" {
			record.Extra["data"] = result.DataCode
		}
		if result.InstCode != "" {
			record.Extra["inst"] = result.InstCode
		}
	}
	return record
}
