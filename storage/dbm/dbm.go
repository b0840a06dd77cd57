package dbm

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/estraier/tkrzw-go"
	"github.com/zond/charsheet"
)

// Tree is a storage.Store in a tkrzw B+ tree file, ordered lexically so
// that all keys of one character are adjacent.
type Tree struct {
	dbm   *tkrzw.DBM
	mutex *sync.RWMutex
}

func (t *Tree) Get(k string) (string, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	b, stat := t.dbm.Get(k)
	if stat.GetCode() == tkrzw.StatusNotFoundError {
		return "", charsheet.WithStack(os.ErrNotExist)
	} else if !stat.IsOK() {
		return "", charsheet.WithStack(stat)
	}
	return string(b), nil
}

func (t *Tree) Set(k string, v string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if stat := t.dbm.Set(k, v, true); !stat.IsOK() {
		return charsheet.WithStack(stat)
	}
	return nil
}

func (t *Tree) Del(k string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if stat := t.dbm.Remove(k); stat.GetCode() == tkrzw.StatusNotFoundError {
		return nil
	} else if !stat.IsOK() {
		return charsheet.WithStack(stat)
	}
	return nil
}

func (t *Tree) Keys(prefix string) ([]string, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	iter := t.dbm.MakeIterator()
	defer iter.Destruct()
	result := []string{}
	stat := iter.Jump(prefix)
	if stat.GetCode() == tkrzw.StatusNotFoundError {
		return result, nil
	} else if !stat.IsOK() {
		return nil, charsheet.WithStack(stat)
	}
	bytePrefix := []byte(prefix)
	for ; stat.IsOK(); stat = iter.Next() {
		key, keyStat := iter.GetKey()
		if keyStat.GetCode() == tkrzw.StatusNotFoundError {
			break
		} else if !keyStat.IsOK() {
			return nil, charsheet.WithStack(keyStat)
		}
		if !bytes.HasPrefix(key, bytePrefix) {
			break
		}
		result = append(result, string(key))
	}
	if !stat.IsOK() && stat.GetCode() != tkrzw.StatusNotFoundError {
		return nil, charsheet.WithStack(stat)
	}
	return result, nil
}

func (t *Tree) Close() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if stat := t.dbm.Close(); !stat.IsOK() {
		return charsheet.WithStack(stat)
	}
	return nil
}

// OpenTree opens or creates the tree at path, adding the ".tkt" suffix.
func OpenTree(path string) (*Tree, error) {
	dbm := tkrzw.NewDBM()
	stat := dbm.Open(fmt.Sprintf("%s.tkt", path), true, map[string]string{
		"update_mode":      "UPDATE_APPENDING",
		"record_comp_mode": "RECORD_COMP_NONE",
		"key_comparator":   "LexicalKeyComparator",
	})
	if !stat.IsOK() {
		return nil, charsheet.WithStack(stat)
	}
	return &Tree{dbm, &sync.RWMutex{}}, nil
}
