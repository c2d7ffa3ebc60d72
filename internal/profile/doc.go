// Package profile evaluates optional host profiles: small Lua files
// that tune a provisioning run without a configuration language of
// their own.
//
// # Schema
//
// A profile sets a single global table named provision:
//
//	provision = {
//		channel = "test",
//		extra_packages = {
//			"vim",
//			platform.is_debian_family and "apt-transport-https" or nil,
//		},
//		shell = { aliases = true },
//		docker_group = true,
//	}
//
// Every field is optional. The read-only platform table (os, family,
// codename, arch booleans) is injected before evaluation so profiles
// can branch per host.
//
// # Sandbox
//
// Profiles are declarative and run with os, io, require, load, and
// debug removed from the VM. A profile cannot touch the host; it can
// only produce values that the provisioning service then acts on.
package profile
