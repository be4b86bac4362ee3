// Package storage persists browsing state between sessions: the last
// browsed path, the path history and the login token. FileStore keeps a
// single JSON document under the state directory; Memory is its in-process
// twin.
package storage
