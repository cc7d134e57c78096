package data_test

import (
	"testing"

	"github.com/mwantia/gridfs/data"
)

func TestAccessModePredicates(t *testing.T) {
	tests := []struct {
		name      string
		mode      data.AccessMode
		readOnly  bool
		writeOnly bool
		create    bool
		trunc     bool
		appends   bool
		excl      bool
	}{
		{
			name:     "Read",
			mode:     data.AccessModeRead,
			readOnly: true,
		},
		{
			name:      "WriteTruncate",
			mode:      data.WriteTruncate,
			writeOnly: true,
			create:    true,
			trunc:     true,
		},
		{
			name:      "WriteAppend",
			mode:      data.WriteAppend,
			writeOnly: true,
			create:    true,
			appends:   true,
		},
		{
			name:      "WriteExclusive",
			mode:      data.WriteExclusive,
			writeOnly: true,
			create:    true,
			excl:      true,
		},
		{
			name: "ReadWrite",
			mode: data.AccessModeRead | data.AccessModeWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(tst *testing.T) {
			if got := tt.mode.IsReadOnly(); got != tt.readOnly {
				tst.Errorf("IsReadOnly: expected %v, got %v", tt.readOnly, got)
			}
			if got := tt.mode.IsWriteOnly(); got != tt.writeOnly {
				tst.Errorf("IsWriteOnly: expected %v, got %v", tt.writeOnly, got)
			}
			if got := tt.mode.HasCreate(); got != tt.create {
				tst.Errorf("HasCreate: expected %v, got %v", tt.create, got)
			}
			if got := tt.mode.HasTrunc(); got != tt.trunc {
				tst.Errorf("HasTrunc: expected %v, got %v", tt.trunc, got)
			}
			if got := tt.mode.HasAppend(); got != tt.appends {
				tst.Errorf("HasAppend: expected %v, got %v", tt.appends, got)
			}
			if got := tt.mode.HasExcl(); got != tt.excl {
				tst.Errorf("HasExcl: expected %v, got %v", tt.excl, got)
			}
		})
	}
}

func TestStatMaskHas(t *testing.T) {
	if !data.StatDefault.Has(data.StatSize) {
		t.Error("Expected default mask to cover size")
	}
	if !data.StatDefault.Has(data.StatTimes) {
		t.Error("Expected default mask to cover times")
	}
	if data.StatDefault.Has(data.StatChecksum) {
		t.Error("Expected default mask to skip checksums")
	}
	if !data.StatAll.Has(data.StatDefault) {
		t.Error("Expected full mask to cover the default groups")
	}
	if data.StatBasic.Has(data.StatSize) {
		t.Error("Expected basic mask to carry nothing")
	}
	if !data.StatAll.Has(data.StatBasic) {
		t.Error("Expected every mask to cover the empty mask")
	}
}

func TestNodeKindString(t *testing.T) {
	if got := data.KindDataObject.String(); got != "data-object" {
		t.Errorf("Expected %q, got %q", "data-object", got)
	}
	if got := data.KindCollection.String(); got != "collection" {
		t.Errorf("Expected %q, got %q", "collection", got)
	}
	if got := data.NodeKind(42).String(); got != "unknown" {
		t.Errorf("Expected %q, got %q", "unknown", got)
	}
}
