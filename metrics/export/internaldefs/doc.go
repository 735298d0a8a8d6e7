// Package internaldefs holds the shared metric name and bucket tables used
// by the exporters. It exists so exporters agree on exposition names without
// duplicating the mapping.
package internaldefs
