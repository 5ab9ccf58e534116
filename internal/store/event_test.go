package store

import (
	"testing"
	"time"

	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/recurrence"
)

func eventFixtures(t *testing.T) (*EventStore, int64, []int64) {
	t.Helper()
	db := openTestDB(t)
	us := NewUserStore(db)
	hs := NewHouseholdStore(db)

	owner, err := us.Create("alice", "alice@example.com", "h")
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	member, err := us.Create("bob", "bob@example.com", "h")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	h, err := hs.Create("Test Household", owner.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if err := us.SetHousehold(member.ID, &h.ID); err != nil {
		t.Fatalf("attach member: %v", err)
	}
	return NewEventStore(db), h.ID, []int64{owner.ID, member.ID}
}

func testEvent(householdID int64, userIDs []int64) model.Event {
	return model.Event{
		HouseholdID: householdID,
		Name:        "Game night",
		Description: "Bring snacks",
		DueDate:     time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
		CreatedBy:   &userIDs[0],
		AttendeeIDs: userIDs,
	}
}

func TestEventCreateWithAttendees(t *testing.T) {
	es, hid, uids := eventFixtures(t)

	e, err := es.Create(testEvent(hid, uids), nil)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if len(e.AttendeeIDs) != 2 {
		t.Fatalf("got %d attendees, want 2", len(e.AttendeeIDs))
	}
}

func TestEventRecurringChildrenCopyAttendees(t *testing.T) {
	es, hid, uids := eventFixtures(t)

	base := testEvent(hid, uids)
	base.Cycle = -30 // monthly
	base.RepeatCount = 2

	cycle, err := recurrence.ParseCode(base.Cycle)
	if err != nil {
		t.Fatalf("parse cycle: %v", err)
	}
	dates, err := recurrence.Expand(base.DueDate, cycle, base.RepeatCount)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}

	parent, err := es.Create(base, dates)
	if err != nil {
		t.Fatalf("create recurring event: %v", err)
	}

	children, err := es.ListChildren(parent.ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}

	wantMonths := []time.Month{time.April, time.May}
	for i, child := range children {
		if child.DueDate.Month() != wantMonths[i] {
			t.Errorf("child[%d] month = %v, want %v", i, child.DueDate.Month(), wantMonths[i])
		}
		if child.RepeatCount != 0 {
			t.Errorf("child[%d] repeat_count = %d, want 0", i, child.RepeatCount)
		}
		if child.ParentID == nil || *child.ParentID != parent.ID {
			t.Errorf("child[%d] parent not set", i)
		}
		// Attendee rows are recreated per child, not shared.
		if len(child.AttendeeIDs) != 2 {
			t.Errorf("child[%d] has %d attendees, want 2", i, len(child.AttendeeIDs))
		}
	}
}

func TestEventRecurringAtomic(t *testing.T) {
	es, hid, uids := eventFixtures(t)

	base := testEvent(hid, uids)
	// An attendee id that violates the users FK must roll back the whole
	// create, parent included.
	base.AttendeeIDs = append(base.AttendeeIDs, 9999)
	base.Cycle = 7
	base.RepeatCount = 2

	cycle, _ := recurrence.ParseCode(base.Cycle)
	dates, _ := recurrence.Expand(base.DueDate, cycle, base.RepeatCount)

	if _, err := es.Create(base, dates); err == nil {
		t.Fatal("create with invalid attendee should error")
	}

	events, err := es.List(hid, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("failed create left %d rows behind", len(events))
	}
}

func TestEventUpdateReplacesAttendees(t *testing.T) {
	es, hid, uids := eventFixtures(t)

	e, _ := es.Create(testEvent(hid, uids), nil)

	e.Name = "Movie night"
	e.AttendeeIDs = uids[:1]
	updated, err := es.Update(*e)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Movie night" {
		t.Errorf("name = %q", updated.Name)
	}
	if len(updated.AttendeeIDs) != 1 || updated.AttendeeIDs[0] != uids[0] {
		t.Errorf("attendees = %v, want [%d]", updated.AttendeeIDs, uids[0])
	}
}

func TestEventListUpcomingWindow(t *testing.T) {
	es, hid, uids := eventFixtures(t)

	in := testEvent(hid, uids)
	in.Name = "in"
	in.DueDate = time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	es.Create(in, nil)

	out := testEvent(hid, uids)
	out.Name = "out"
	out.DueDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	es.Create(out, nil)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	got, err := es.ListUpcoming(hid, start, end, 5)
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(got) != 1 || got[0].Name != "in" {
		t.Errorf("got %d events, want just the in-window one", len(got))
	}
}

func TestEventDelete(t *testing.T) {
	es, hid, uids := eventFixtures(t)

	e, _ := es.Create(testEvent(hid, uids), nil)
	if err := es.Delete(e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := es.GetByID(e.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
