// Package api exposes the access service over HTTP: installing and querying
// the permission context, checking rights, and driving the department
// navigation state machine.
package api
