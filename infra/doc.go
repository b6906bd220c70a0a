// Package infra contains technical adapters such as routing clients,
// persistence backends and metrics exporters. These packages should depend
// only on the interfaces defined in the core packages.
package infra
