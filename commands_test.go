package main

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/ByLCY/reportgrid/dsl"
)

func TestOutputName(t *testing.T) {
	named := dsl.NewDocument(nil, zaptest.NewLogger(t))
	named.AddLine(".name Quarterly Sales: Q3/2026")
	unnamed := dsl.NewDocument(nil, zaptest.NewLogger(t))

	cases := []struct {
		doc  *dsl.Document
		ref  string
		want string
	}{
		{named, "report.jsr", "quarterly-sales-q3-2026.pdf"},
		{unnamed, "reports/Monthly Report.jsr", "monthly-report.pdf"},
		{unnamed, "", appName + ".pdf"},
		{nil, "http://example.com/a/b.jsr", "b.pdf"},
	}
	for _, tc := range cases {
		if got := outputName(tc.doc, tc.ref); got != tc.want {
			t.Fatalf("outputName(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}
