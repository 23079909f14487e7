package memory_test

import (
	"testing"

	"github.com/ardanlabs/registry/foundation/registry/storage/memory"
	"github.com/ardanlabs/registry/foundation/registry/storage/storagetest"
)

func Test_Memory(t *testing.T) {
	storagetest.Run(t, memory.New())
}
