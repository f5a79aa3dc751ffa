// Package audit builds, appends and reads the syncwrap audit log.
//
// The log is a file of JSON lines, one per invocation that reached the
// transfer:
//
//	{"timestamp":"2024-06-10T12:00:00Z","invocation_id":"...","status":"info",
//	 "detail":{"source":"...","destination":"...","options":"...","option_args":[...],
//	 "output":"...","start_time":"...","end_time":"...","duration":"1.5s"},
//	 "message":"Sync successful."}
//
// Records are encoded with zerolog, written whole by a single append and
// read back with Scan, ReadAll or Find.
package audit
