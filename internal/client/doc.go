// Package client composes the device agent: local mirror store, server
// adapter, delete-intent recorder, sync machinery and the bootstrap
// orchestrator, wired from the agent configuration.
package client
