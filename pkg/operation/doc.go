/*
Package operation runs file syncs: it loads a source and a destination, applies
section mappings through the document adapters and writes or previews the
result.

	+-----------+     +----------+     +-----------------------+
	|   LOAD    | --> | RESOLVE  | --> | DRY_RUN_REPORT | WRITE |
	+-----------+     +----------+     +-----------------------+
	      \                 \                      |
	       +-----------------+------> FAILED       v
	                                              DONE

🔄 Flow:
 1. LOAD reads both files, rejects binary content unless allowed and decodes
    the configured encoding.
 2. RESOLVE copies the whole source, or applies each mapping in order to one
    in-memory destination document.
 3. Equal bytes end the run as already in sync. Otherwise a dry run reports a
    unified diff and stops, and a real run backs up the destination if asked
    and writes it atomically.

All filesystem access goes through status.FileManager; remote sources go
through a source.Reader.

🔍 Example:

	syncer := operation.NewSyncer(status.NewOS())
	res, err := syncer.Sync(ctx, operation.Request{
		Source:      "values.yaml",
		Destination: "README.md",
		Mappings:    mappings,
		Options:     operation.DefaultOptions(),
	})
*/
package operation
