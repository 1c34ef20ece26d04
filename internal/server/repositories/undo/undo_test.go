package undo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestLog_RollbackRestoresMap(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2}
	want := map[string]int{"a": 1, "b": 2}

	var l Log
	Set(&l, m, "a", 10)
	Set(&l, m, "c", 3)
	Delete(&l, m, "b")
	Delete(&l, m, "missing")
	Set(&l, m, "a", 11)
	Delete(&l, m, "c")
	assert.Equal(t, 5, l.Len())

	l.Rollback()
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("map after rollback (-want +got):\n%s", diff)
	}
	assert.Zero(t, l.Len())
}

func TestLog_CommitKeepsWrites(t *testing.T) {
	m := map[int]string{}

	var l Log
	Set(&l, m, 1, "x")
	l.Commit()
	assert.Zero(t, l.Len())

	l.Rollback()
	assert.Equal(t, map[int]string{1: "x"}, m)
}

func TestLog_RollbackOrderIsNewestFirst(t *testing.T) {
	var got []int
	var l Log
	for i := 1; i <= 3; i++ {
		l.Push(func() { got = append(got, i) })
	}
	l.Rollback()
	assert.Equal(t, []int{3, 2, 1}, got)
}
