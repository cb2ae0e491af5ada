package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/newtron-network/astopo/pkg/labgen"
)

func TestChanges_Ordered(t *testing.T) {
	db := labgen.ConfigDB{
		"INTERFACE": {
			"a1r0|a1r0-eth0": {"ip": "10.1.0.254/31"},
		},
		"AS": {
			"2": {"router": "a2r0"},
			"1": {"router": "a1r0"},
		},
		"DEVICE": {
			"a1r0": {"kind": "router"},
		},
	}

	var got []string
	for _, c := range Changes(db) {
		got = append(got, c.RedisKey())
	}
	want := []string{"AS|1", "AS|2", "DEVICE|a1r0", "INTERFACE|a1r0|a1r0-eth0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Changes order (-want +got):\n%s", diff)
	}
}

func TestChanges_Empty(t *testing.T) {
	if got := Changes(labgen.ConfigDB{}); len(got) != 0 {
		t.Errorf("Changes(empty) = %v", got)
	}
}

func TestTablesCoverConfigDB(t *testing.T) {
	want := []string{labgen.TableAS, labgen.TableDevice, labgen.TableInterface}
	if diff := cmp.Diff(want, Tables); diff != "" {
		t.Errorf("Tables (-want +got):\n%s", diff)
	}
}
