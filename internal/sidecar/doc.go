// Package sidecar loads YAML hint files for shapes that cannot carry
// struct tags, such as types owned by another module.
//
// Example:
//
//	version: "1"
//	shapes:
//	  - type: store.Order
//	    members:
//	      Total: {min: 1, max: 500}
//	      Items: {count: 3}
//	      Notes: {skip: true}
//	  - type: store.Envelope
//	    params: T
//	    members:
//	      Payload: {type: "[]T"}
//	substitutes:
//	  store.Notifier: store.EmailNotifier
//
// Type names are resolved through the factory's type registry. Sidecar
// hints override struct tag hints option by option.
package sidecar
