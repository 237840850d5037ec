package framework

import (
	"errors"
	"sort"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// IDList is an ordered list of test ids. It implements flag.Value, accepting comma-separated
// ids and repeated flags.
type IDList []string

func (l IDList) String() string {
	return strings.Join(l, ",")
}

// Set is called by the command line parser
func (l *IDList) Set(value string) error {
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			return errors.New("empty test id")
		}
		*l = append(*l, s)
	}
	return nil
}

// IDSet is a set of test ids, used for tests whose output is known to diverge.
type IDSet map[string]struct{}

// NewIDSet creates a set containing the given ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) String() string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// Set is called by the command line parser
func (s IDSet) Set(value string) error {
	var l IDList
	if err := l.Set(value); err != nil {
		return err
	}
	for _, id := range l {
		s[id] = struct{}{}
	}
	return nil
}

// ExcludeFilter returns a Filter that rejects any test whose name is in the set.
func (s IDSet) ExcludeFilter() Filter {
	return func(id TestID) bool {
		return !s.Has(id.Name())
	}
}
