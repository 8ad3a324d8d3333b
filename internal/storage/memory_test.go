package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mss/internal/storage"
	"mss/internal/storage/storagetest"
)

type InMemorySuite struct {
	storagetest.AdapterSuite
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) SetupTest() {
	s.Adapter = storage.NewInMemory()
	s.Ctx = context.Background()
}
