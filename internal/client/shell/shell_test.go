package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/atinyakov/TripSync/internal/client/remote"
	"github.com/atinyakov/TripSync/internal/client/tripsync"
	"github.com/atinyakov/TripSync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCoordinator struct {
	FocusFunc   func(ctx context.Context, userID string, added *tripsync.AddResult) (tripsync.View, error)
	AddTripFunc func(ctx context.Context, userID string, in models.TripInput) (tripsync.AddResult, error)
	SyncFunc    func(ctx context.Context, userID string) (tripsync.View, error)
	DeleteFunc  func(ctx context.Context, userID string, id int64, confirm tripsync.ConfirmFunc) (tripsync.View, error)
	ViewFunc    func() tripsync.View
}

var _ Coordinator = (*mockCoordinator)(nil)

func (m *mockCoordinator) Focus(ctx context.Context, userID string, added *tripsync.AddResult) (tripsync.View, error) {
	if m.FocusFunc != nil {
		return m.FocusFunc(ctx, userID, added)
	}
	return tripsync.View{Source: tripsync.SourceLocal}, nil
}

func (m *mockCoordinator) AddTrip(ctx context.Context, userID string, in models.TripInput) (tripsync.AddResult, error) {
	return m.AddTripFunc(ctx, userID, in)
}

func (m *mockCoordinator) Sync(ctx context.Context, userID string) (tripsync.View, error) {
	return m.SyncFunc(ctx, userID)
}

func (m *mockCoordinator) Delete(ctx context.Context, userID string, id int64, confirm tripsync.ConfirmFunc) (tripsync.View, error) {
	return m.DeleteFunc(ctx, userID, id, confirm)
}

func (m *mockCoordinator) View() tripsync.View {
	if m.ViewFunc != nil {
		return m.ViewFunc()
	}
	return tripsync.View{}
}

func goa(id int64) models.TripRecord {
	return models.TripRecord{ID: id, PlaceName: "Goa Beach", Experience: "Sunset walk", TravelWith: "friends", TravelBy: "car", UserID: "u1"}
}

func run(t *testing.T, coord Coordinator, input string) string {
	t.Helper()
	var out bytes.Buffer
	s := New(coord, "u1", strings.NewReader(input), &out, nil)
	require.NoError(t, s.Run(context.Background()))
	return out.String()
}

func TestRun_HelpUnknownExit(t *testing.T) {
	out := run(t, &mockCoordinator{}, "help\nfrobnicate\nexit\nlist\n")

	assert.Contains(t, out, helpText)
	assert.Contains(t, out, "Unknown command. Type 'help' for a list of commands.")
	assert.True(t, strings.HasSuffix(out, "Bye\n"), out)
}

func TestRun_StartsWithLocalList(t *testing.T) {
	var focused []string
	coord := &mockCoordinator{
		FocusFunc: func(_ context.Context, userID string, added *tripsync.AddResult) (tripsync.View, error) {
			focused = append(focused, userID)
			assert.Nil(t, added)
			return tripsync.View{Source: tripsync.SourceLocal, Records: []models.TripRecord{goa(1)}}, nil
		},
	}

	out := run(t, coord, "")

	assert.Equal(t, []string{"u1"}, focused)
	assert.Contains(t, out, "Showing local trips")
	assert.Contains(t, out, "1  Goa Beach | Sunset walk | with friends | by car")
}

func TestRun_NoUser(t *testing.T) {
	coord := &mockCoordinator{
		FocusFunc: func(context.Context, string, *tripsync.AddResult) (tripsync.View, error) {
			return tripsync.View{}, tripsync.ErrNoUser
		},
	}
	s := New(coord, "", strings.NewReader(""), &bytes.Buffer{}, nil)

	assert.ErrorIs(t, s.Run(context.Background()), tripsync.ErrNoUser)
}

func TestAdd_ShowsFieldMessages(t *testing.T) {
	coord := &mockCoordinator{
		AddTripFunc: func(_ context.Context, _ string, in models.TripInput) (tripsync.AddResult, error) {
			return tripsync.AddResult{}, in.Validate()
		},
	}

	out := run(t, coord, "add\nGoa\n\n\n\n")

	assert.Contains(t, out, models.MsgExperienceRequired)
	assert.Contains(t, out, models.MsgTravelWithRequired)
	assert.Contains(t, out, models.MsgTravelByRequired)
	assert.NotContains(t, out, models.MsgPlaceNameRequired)
}

func TestAdd_ReturnsToListWithResult(t *testing.T) {
	res := tripsync.AddResult{Record: goa(100), Pushed: true}
	var gotAdded *tripsync.AddResult
	coord := &mockCoordinator{
		AddTripFunc: func(_ context.Context, userID string, in models.TripInput) (tripsync.AddResult, error) {
			assert.Equal(t, "u1", userID)
			assert.Equal(t, "Goa Beach", in.PlaceName)
			return res, nil
		},
		FocusFunc: func(_ context.Context, _ string, added *tripsync.AddResult) (tripsync.View, error) {
			if added == nil {
				return tripsync.View{Source: tripsync.SourceLocal}, nil
			}
			gotAdded = added
			return tripsync.View{Source: tripsync.SourceRemote, Records: []models.TripRecord{goa(100)}}, nil
		},
	}

	out := run(t, coord, "add\nGoa Beach\nSunset walk\nfriends\ncar\n")

	require.NotNil(t, gotAdded)
	assert.Equal(t, res, *gotAdded)
	assert.Contains(t, out, "Trip 100 added")
	assert.Contains(t, out, "Showing remote trips")
}

func TestSync_EmptyRemote(t *testing.T) {
	coord := &mockCoordinator{
		SyncFunc: func(context.Context, string) (tripsync.View, error) {
			return tripsync.View{Source: tripsync.SourceRemote, Records: []models.TripRecord{}}, nil
		},
	}

	out := run(t, coord, "sync\n")

	assert.Contains(t, out, "Showing remote trips\nNo data found\n")
}

func TestSync_FailureOnlyNotifies(t *testing.T) {
	coord := &mockCoordinator{
		SyncFunc: func(context.Context, string) (tripsync.View, error) {
			return tripsync.View{}, errors.New("offline")
		},
	}

	out := run(t, coord, "sync\n")

	assert.NotContains(t, out, "Error:")
	assert.NotContains(t, out, "Showing remote trips")
}

func TestRejectedTokenHint(t *testing.T) {
	rejected := fmt.Errorf("sync: %w", &remote.APIError{StatusCode: http.StatusUnauthorized, Message: "unauthorized"})

	t.Run("sync", func(t *testing.T) {
		coord := &mockCoordinator{
			SyncFunc: func(context.Context, string) (tripsync.View, error) {
				return tripsync.View{}, rejected
			},
		}

		out := run(t, coord, "sync\n")

		assert.Contains(t, out, authHint)
		assert.NotContains(t, out, "Error:")
	})

	t.Run("add push", func(t *testing.T) {
		coord := &mockCoordinator{
			AddTripFunc: func(context.Context, string, models.TripInput) (tripsync.AddResult, error) {
				return tripsync.AddResult{Record: goa(100), PushErr: rejected}, nil
			},
		}

		out := run(t, coord, "add\nGoa Beach\nSunset walk\nfriends\ncar\n")

		assert.Contains(t, out, "Trip 100 added\n"+authHint)
	})

	t.Run("delete", func(t *testing.T) {
		coord := &mockCoordinator{
			DeleteFunc: func(context.Context, string, int64, tripsync.ConfirmFunc) (tripsync.View, error) {
				return tripsync.View{}, rejected
			},
		}

		out := run(t, coord, "delete 5\ny\n")

		assert.Contains(t, out, "Error: sync: server error: 401 unauthorized")
		assert.Contains(t, out, authHint)
	})

	t.Run("other failures get no hint", func(t *testing.T) {
		coord := &mockCoordinator{
			SyncFunc: func(context.Context, string) (tripsync.View, error) {
				return tripsync.View{}, &remote.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
			},
		}

		out := run(t, coord, "sync\n")

		assert.NotContains(t, out, authHint)
	})
}

func TestDelete(t *testing.T) {
	t.Run("usage", func(t *testing.T) {
		out := run(t, &mockCoordinator{}, "delete\ndelete abc\n")
		assert.Contains(t, out, "Usage: delete <id>")
		assert.Contains(t, out, `Invalid id "abc"`)
	})

	t.Run("confirmed", func(t *testing.T) {
		coord := &mockCoordinator{
			DeleteFunc: func(_ context.Context, _ string, id int64, confirm tripsync.ConfirmFunc) (tripsync.View, error) {
				require.NotNil(t, confirm)
				if !confirm(id) {
					return tripsync.View{}, tripsync.ErrCancelled
				}
				return tripsync.View{Source: tripsync.SourceLocal, Records: []models.TripRecord{goa(200)}}, nil
			},
		}

		out := run(t, coord, "delete 100\ny\n")

		assert.Contains(t, out, "Delete trip 100? [y/N] ")
		assert.Contains(t, out, "Trip 100 deleted")
		assert.Contains(t, out, "200  Goa Beach")
	})

	t.Run("declined", func(t *testing.T) {
		coord := &mockCoordinator{
			DeleteFunc: func(_ context.Context, _ string, id int64, confirm tripsync.ConfirmFunc) (tripsync.View, error) {
				if !confirm(id) {
					return tripsync.View{}, tripsync.ErrCancelled
				}
				return tripsync.View{}, nil
			},
		}

		out := run(t, coord, "delete 100\nn\n")

		assert.NotContains(t, out, "deleted")
		assert.NotContains(t, out, "Error:")
	})

	t.Run("assume yes", func(t *testing.T) {
		coord := &mockCoordinator{
			DeleteFunc: func(_ context.Context, _ string, _ int64, confirm tripsync.ConfirmFunc) (tripsync.View, error) {
				assert.Nil(t, confirm)
				return tripsync.View{}, nil
			},
		}
		var out bytes.Buffer
		s := New(coord, "u1", strings.NewReader(""), &out, nil)
		s.AssumeYes = true

		require.NoError(t, s.Exec(context.Background(), []string{"delete", "7"}))
		assert.Contains(t, out.String(), "Trip 7 deleted")
	})

	t.Run("store error is reported", func(t *testing.T) {
		coord := &mockCoordinator{
			DeleteFunc: func(context.Context, string, int64, tripsync.ConfirmFunc) (tripsync.View, error) {
				return tripsync.View{}, errors.New("disk locked")
			},
		}

		out := run(t, coord, "delete 5\ny\n")

		assert.Contains(t, out, "Error: disk locked")
	})
}

func TestNotifier(t *testing.T) {
	var out bytes.Buffer

	Notifier(&out).Notify(tripsync.NoticeSyncFailed)

	assert.Equal(t, "! Failed to sync\n", out.String())
}
