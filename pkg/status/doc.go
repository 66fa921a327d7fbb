/*
Package status owns every filesystem touch of a sync run and reports outcomes.

	            +-------------+
	            |   Status    |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +-----+-----+
	|  Manager  |           |  Reporter |
	|  (billy)  |           |  (pterm)  |
	+-----------+           +-----------+

🎯 Purpose:
- Reads sources and destinations through a go-billy filesystem
- Writes destinations atomically (temp sibling + rename)
- Creates timestamped backups before overwriting
- Prints one line per sync outcome

🤝 Interfaces:
- FileManager: filesystem operations used by the orchestrator
- FileFormatter: turns outcomes into display text

The core sync logic never imports os directly. Tests swap the OS filesystem
for memfs:

	mgr := status.New(memfs.New(), status.WithClock(fixed))
	err := mgr.WriteFileAtomic(ctx, "/dst/config.yaml", content)
*/
package status
