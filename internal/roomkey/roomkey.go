// Package roomkey derives the canonical room name from a participant-id set
// plus a human label, and inverts it. Pure string work, no I/O.
package roomkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// IDDelim joins participant ids inside the canonical name. Labels may
	// contain it; participant ids must not.
	IDDelim = "-?-"
	// Separator splits the id segment from the label. Reserved: it must not
	// appear in participant ids or labels.
	Separator = "=?="
)

var ErrEmptySet = errors.New("roomkey: participant set is empty")

// Encode normalizes participantIDs (deduplicate, sort lexicographically),
// joins them with IDDelim and appends Separator plus label. Two sets that
// differ only by order or duplicates encode to the same name.
func Encode(participantIDs []string, label string) (string, error) {
	if len(participantIDs) == 0 {
		return "", ErrEmptySet
	}
	if strings.Contains(label, Separator) {
		return "", fmt.Errorf("roomkey: label contains reserved token %q", Separator)
	}

	seen := make(map[string]struct{}, len(participantIDs))
	ids := make([]string, 0, len(participantIDs))
	for _, id := range participantIDs {
		if id == "" {
			return "", errors.New("roomkey: empty participant id")
		}
		if strings.Contains(id, IDDelim) || strings.Contains(id, Separator) {
			return "", fmt.Errorf("roomkey: participant id %q contains a reserved token", id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return strings.Join(ids, IDDelim) + Separator + label, nil
}

// Decode recovers the sorted participant-id sequence and the label from a
// canonical name. The split anchor is the first occurrence of Separator, so
// labels containing IDDelim decode correctly.
func Decode(name string) ([]string, string, error) {
	idPart, label, ok := strings.Cut(name, Separator)
	if !ok {
		return nil, "", fmt.Errorf("roomkey: %q is not a canonical room name", name)
	}
	if idPart == "" {
		return nil, "", ErrEmptySet
	}
	return strings.Split(idPart, IDDelim), label, nil
}
