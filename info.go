package gridfs

import (
	"github.com/mwantia/gridfs/data"
)

// toObjectInfo shapes a raw store stat into the caller-facing info,
// carrying only the fields the mask asked for. Collections always
// report size zero whatever the store claims.
func toObjectInfo(local string, stat *data.ObjectStat) *data.ObjectInfo {
	info := &data.ObjectInfo{
		Name:   baseName(local),
		Path:   local,
		Kind:   stat.Kind,
		Fields: stat.Populated,
	}

	if stat.Populated.Has(data.StatSize) && stat.Kind == data.KindDataObject {
		info.Size = stat.Size
	}
	if stat.Populated.Has(data.StatTimes) {
		info.CreateTime = stat.CreateTime
		info.ModifyTime = stat.ModifyTime
	}
	if stat.Populated.Has(data.StatChecksum) && stat.Kind == data.KindDataObject {
		info.Checksum = stat.Checksum
	}
	if stat.Populated.Has(data.StatOwner) {
		info.Owner = stat.Owner
	}

	return info
}
