package gc

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/estraier/tkrzw-go"
	"github.com/pkg/errors"
	"github.com/rhelmot/objectively/object"
)

// CensusWriter persists a per-kind live-object count snapshot after every
// collection, for offline diagnosis of a long-running process's memory
// shape. It is off by default and never sits on the allocation hot path --
// only Collect's already-slow-path tail calls into it.
type CensusWriter struct {
	dbm *tkrzw.DBM
	seq uint64
}

var current atomic.Pointer[CensusWriter]

// OpenCensusWriter opens (creating if necessary) a hash database at
// dir/census.tkh and installs it as the active writer for future
// collections. Call StopCensus to disable again.
func OpenCensusWriter(dir string) (*CensusWriter, error) {
	dbm := tkrzw.NewDBM()
	stat := dbm.Open(filepath.Join(dir, "census.tkh"), true, map[string]string{
		"update_mode":      "UPDATE_APPENDING",
		"record_comp_mode": "RECORD_COMP_NONE",
	})
	if !stat.IsOK() {
		return nil, errors.WithStack(stat)
	}
	w := &CensusWriter{dbm: dbm}
	current.Store(w)
	return w, nil
}

// StopCensus detaches the active writer (if any) without closing its
// underlying database, leaving that to the caller.
func StopCensus() {
	current.Store(nil)
}

func activeWriter() *CensusWriter {
	return current.Load()
}

// Close flushes and closes the backing database file.
func (w *CensusWriter) Close() error {
	if stat := w.dbm.Close(); !stat.IsOK() {
		return errors.WithStack(stat)
	}
	return nil
}

// record writes one row per (kind, group) pair counting objects that
// survived the sweep, keyed by a monotonically increasing sequence number
// so successive snapshots don't collide.
func (w *CensusWriter) record(all, unreached []object.Object) error {
	dead := make(map[object.Object]bool, len(unreached))
	for _, o := range unreached {
		dead[o] = true
	}
	counts := map[string]int{}
	for _, o := range all {
		if dead[o] {
			continue
		}
		groupName := "<none>"
		if g := o.Hdr().Group; g != nil {
			groupName = g.Name
		}
		key := fmt.Sprintf("%s/%s", o.Hdr().Table.Kind.String(), groupName)
		counts[key]++
	}
	seq := atomic.AddUint64(&w.seq, 1)
	for key, n := range counts {
		rowKey := fmt.Sprintf("%020d/%s", seq, key)
		if stat := w.dbm.Set([]byte(rowKey), []byte(fmt.Sprintf("%d", n)), true); !stat.IsOK() {
			return errors.WithStack(stat)
		}
	}
	return nil
}
