package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/newtron-network/astopo/pkg/spec"
)

func TestParseHostFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    spec.HostSpec
		wantErr bool
	}{
		{in: "100", want: spec.HostSpec{ASN: 100}},
		{in: "AS13335", want: spec.HostSpec{ASN: 13335}},
		{in: "100:tm-agent", want: spec.HostSpec{ASN: 100, Variant: "tm-agent"}},
		{in: "100@10.0.0.9", want: spec.HostSpec{ASN: 100, Address: "10.0.0.9"}},
		{in: "100:tm-dispatcher@10.0.0.9", want: spec.HostSpec{ASN: 100, Variant: "tm-dispatcher", Address: "10.0.0.9"}},
		{in: "100*4", want: spec.HostSpec{ASN: 100, Count: 4}},
		{in: "100:host*2", want: spec.HostSpec{ASN: 100, Variant: "host", Count: 2}},
		{in: "100*0", wantErr: true},
		{in: "100@", wantErr: true},
		{in: "100@10.0.0.9*2", wantErr: true},
		{in: "100:toaster", wantErr: true},
		{in: "0", wantErr: true},
		{in: "x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHostFlag(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHostFlag(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseHostFlag(%q) (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestRequireInputDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	inputDir = ""
	t.Setenv("ASTOPO_INPUT", "")
	if _, err := requireInputDir(); err == nil {
		t.Error("requireInputDir() with nothing set should fail")
	}

	t.Setenv("ASTOPO_INPUT", "/from/env")
	if got, _ := requireInputDir(); got != "/from/env" {
		t.Errorf("env: got %q", got)
	}

	inputDir = "/from/flag"
	defer func() { inputDir = "" }()
	if got, _ := requireInputDir(); got != "/from/flag" {
		t.Errorf("flag: got %q", got)
	}
}

func TestBuildTopology_Pipeline(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lab7")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		spec.DefaultASPathsFile:    `[[1, 2, 3], [3, 2]]`,
		spec.DefaultASPrefixesFile: `{"1": ["10.1.0.0/24"], "2": ["10.2.0.0/24"], "3": ["10.3.0.0/24"]}`,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
	}

	inputDir = dir
	hostFlags = []string{"2*3", "3:tm-agent"}
	defer func() { inputDir, hostFlags = "", nil }()

	in, topo, err := buildTopology()
	if err != nil {
		t.Fatalf("buildTopology() error = %v", err)
	}
	if in.Config.Name != "lab7" {
		t.Errorf("lab name = %q, want input directory name", in.Config.Name)
	}
	want := summary{ASes: 3, Routers: 3, Switches: 2, Hosts: 4, RouterLinks: 2}
	if diff := cmp.Diff(want, summarize(topo)); diff != "" {
		t.Errorf("summary (-want +got):\n%s", diff)
	}
}
