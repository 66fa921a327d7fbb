// Package config loads filesync job files.
//
//	            +-------------+
//	            |   Config    |
//	            |   (Jobs)    |
//	            +------+------+
//	                   |
//	      +------------+------------+
//	      |            |            |
//	+-----+-----+ +----+----+ +-----+-----+
//	|    HCL    | |  YAML   | |   JSONC   |
//	|  Parser   | | Parser  | |  Parser   |
//	+-----------+ +---------+ +-----------+
//
// A config file lists jobs. Each job syncs one source into one destination,
// optionally restricted to section mappings, with literal replacements applied
// to the source first. Top-level settings run jobs concurrently and override
// which adapter handles which paths.
//
// 🔍 Example (HCL):
//
//	async = true
//
//	adapters = {
//	  "docs/**/*.txt" = "markdown"
//	}
//
//	defaults {
//	  backup = true
//	}
//
//	job "readme" {
//	  source      = "github://walteh/filesync@main/values.yaml"
//	  destination = "README.md"
//	  sections    = ["version->Project.Version?create=true"]
//
//	  replacement {
//	    old = "${env.OLD_NAME}"
//	    new = "filesync"
//	  }
//	}
//
// HCL files can read environment variables through the env object. Relative
// local paths are resolved against the directory of the config file.
package config
