package record

import (
	"strconv"
	"strings"

	"github.com/gobuffalo/flect"
	"golang.org/x/text/unicode/norm"
)

// Namespace derives the colon-delimited storage namespace for a qualified
// model name. The outer segment (the application namespace) is dropped and
// each remaining segment is lower-cased and pluralized.
//
//	Namespace("myapp.Task")          == "tasks"
//	Namespace("myapp.billing.Task")  == "billings:tasks"
//	Namespace("Task")                == "tasks"
//
// Names are NFC-normalized first so visually identical declarations derive
// identical keys. Two model types with distinct declared names never
// collide: every per-record key and the counter key embed this namespace.
func Namespace(qualified string) string {
	name := norm.NFC.String(qualified)
	segments := strings.Split(name, ".")
	if len(segments) > 1 {
		segments = segments[1:]
	}
	for i, seg := range segments {
		segments[i] = flect.Pluralize(strings.ToLower(seg))
	}
	return strings.Join(segments, ":")
}

// counterKey is the store key of the model's identifier counter.
func counterKey(namespace string) string {
	return namespace + ":next_id"
}

// recordKey is the store key of one record's hash.
func recordKey(namespace string, id int64) string {
	return namespace + ":" + strconv.FormatInt(id, 10)
}
