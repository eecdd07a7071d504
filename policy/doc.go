// Package policy provides optional declarative consent rules applied on top
// of the request broker – for example to auto-approve trusted origins or to
// block known-bad ones without ever showing a prompt.
package policy
