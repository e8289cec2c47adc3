// Package archive keeps an audit trail of what sessions did to solutions:
// which were built, saved, exported or removed, and which went stale after
// a tree edit.
//
// A Recorder turns session events into Records and writes them to a
// Storage in the background. Backends live in the storage subpackage;
// retention enforces age and count limits.
//
//	store, _ := storage.New(&cfg.Archive, logger)
//	rec := archive.NewRecorder(store, nil, collector, logger)
//	defer rec.Close()
//	rec.Record(ctx, archive.Event{Action: archive.ActionBuilt, Solution: s})
package archive
