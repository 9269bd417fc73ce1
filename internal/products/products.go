// Package products lists the HashiCorp products hcdl knows how to fetch.
package products

import "sort"

// List is every product published to the release index, sorted.
var List = []string{
	"atlas-upload-cli",
	"boundary",
	"boundary-desktop",
	"consul",
	"consul-aws",
	"consul-esm",
	"consul-k8s",
	"consul-replicate",
	"consul-template",
	"consul-terraform-sync",
	"docker-base",
	"docker-basetool",
	"envconsul",
	"nomad",
	"nomad-autoscaler",
	"nomad-pack",
	"packer",
	"sentinel",
	"serf",
	"terraform",
	"terraform-ls",
	"vagrant",
	"vault",
	"vault-ssh-helper",
	"waypoint",
}

// IsValid reports whether name is a known product.
func IsValid(name string) bool {
	i := sort.SearchStrings(List, name)
	return i < len(List) && List[i] == name
}
