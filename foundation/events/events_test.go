package events_test

import (
	"testing"

	"github.com/ardanlabs/registry/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan events out to receivers.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen receivers filter by kind.", testID)
		{
			evts := events.New()
			all := evts.Acquire("all")
			commits := evts.Acquire("commits", "committed")

			if again := evts.Acquire("all"); again != all {
				t.Fatalf("\t%s\tTest %d:\tShould return the same channel for the same id.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould return the same channel for the same id.", success, testID)

			evts.Send("upgraded", []byte(`{"version":2}`))
			evts.Send("committed", []byte(`{"sequence":1}`))

			if got := (<-all).Kind; got != "upgraded" {
				t.Fatalf("\t%s\tTest %d:\tShould deliver every kind in order, got %s.", failed, testID, got)
			}
			if got := (<-all).Kind; got != "committed" {
				t.Fatalf("\t%s\tTest %d:\tShould deliver every kind in order, got %s.", failed, testID, got)
			}
			t.Logf("\t%s\tTest %d:\tShould deliver every kind in order.", success, testID)

			msg := <-commits
			if msg.Kind != "committed" || string(msg.Data) != `{"sequence":1}` {
				t.Fatalf("\t%s\tTest %d:\tShould deliver only wanted kinds, got %+v.", failed, testID, msg)
			}

			select {
			case msg := <-commits:
				t.Fatalf("\t%s\tTest %d:\tShould have nothing else queued, got %+v.", failed, testID, msg)
			default:
			}
			t.Logf("\t%s\tTest %d:\tShould deliver only wanted kinds.", success, testID)

			if err := evts.Release("commits"); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to release: %v", failed, testID, err)
			}

			if err := evts.Release("commits"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail releasing twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould release a receiver once.", success, testID)

			evts.Shutdown()
			if _, open := <-all; open || evts.Count() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould close every channel on shutdown.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould close every channel on shutdown.", success, testID)
		}
	}
}
