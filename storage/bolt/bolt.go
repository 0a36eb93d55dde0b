// Package bolt is a storage.Storage backed by a bbolt file.
package bolt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/storage"
	"github.com/Comcast/shapes/util"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Bucket is the bucket that holds case specs (as JSON) by name.
var Bucket = []byte("cases")

type Storage struct {
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return errors.Wrapf(err, "open %s", s.filename)
	}
	s.db = db

	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(Bucket)
		return err
	})
}

func (s *Storage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Storage) PutCase(ctx context.Context, spec *core.CaseSpec) error {
	if spec.Name == "" {
		return storage.ErrNoName
	}
	util.Logger.Debug().Str("case", spec.Name).Msg("bolt PutCase")

	js, err := json.Marshal(spec)
	if err != nil {
		return errors.Wrapf(err, "case %s", spec.Name)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Put([]byte(spec.Name), js)
	})
}

func (s *Storage) GetCase(ctx context.Context, name string) (*core.CaseSpec, error) {
	util.Logger.Debug().Str("case", name).Msg("bolt GetCase")

	var js []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// The slice is only valid during the transaction.
		if bs := tx.Bucket(Bucket).Get([]byte(name)); bs != nil {
			js = make([]byte, len(bs))
			copy(js, bs)
		}
		return nil
	})
	if err != nil || js == nil {
		return nil, err
	}

	var spec core.CaseSpec
	if err = json.Unmarshal(js, &spec); err != nil {
		return nil, errors.Wrapf(err, "case %s", name)
	}
	return &spec, nil
}

func (s *Storage) RemCase(ctx context.Context, name string) error {
	util.Logger.Debug().Str("case", name).Msg("bolt RemCase")
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).Delete([]byte(name))
	})
}

func (s *Storage) ListCases(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(Bucket).ForEach(func(k, v []byte) error {
			acc = append(acc, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}
