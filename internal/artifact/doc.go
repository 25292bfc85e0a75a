// Package artifact persists the pipeline's durable outputs as named
// JSON-encoded slots in a directory, overwritten wholesale on each run.
//
// Slots: cleaned_data.json, meta_data.json, assets.json. WriteBlob
// additionally writes a timestamped final_data_<ts>.blob.json copy to the
// blob directory. Read distinguishes a never-written slot (ErrNotFound)
// from one holding malformed JSON (ErrCorrupt) so the API can map them to
// 404 and 500 respectively.
//
// All writes go through a temp-file-and-rename so readers never observe a
// partially written slot.
package artifact
