package app_test

import (
	"context"
	"testing"
	"time"

	"growt/internal/app"
	"growt/internal/domain"

	"github.com/stretchr/testify/require"
)

func deviceRepoWith(d domain.Device) *mockDeviceRepo {
	return &mockDeviceRepo{
		getFn: func(_ context.Context, id string) (*domain.Device, error) {
			if id != d.ID {
				return nil, nil
			}
			cp := d
			return &cp, nil
		},
	}
}

func TestDeviceRegister(t *testing.T) {
	svc := app.NewDeviceService(&mockDeviceRepo{}, app.NewDeviceTokens("secret", 0))
	d, err := svc.Register(context.Background(), 3, " SCALE-01 ", "Barn scale")
	require.NoError(t, err)
	require.Equal(t, domain.DevicePending, d.Status)
	require.Equal(t, "SCALE-01", d.Serial)
	require.NotEmpty(t, d.ID)
}

func TestDeviceRegister_Validation(t *testing.T) {
	repo := &mockDeviceRepo{
		bySerialFn: func(_ context.Context, serial string) (*domain.Device, error) {
			return &domain.Device{ID: "d1", Serial: serial}, nil
		},
	}
	svc := app.NewDeviceService(repo, app.NewDeviceTokens("secret", 0))

	_, err := svc.Register(context.Background(), 1, "", "x")
	require.ErrorIs(t, err, app.ErrInvalidInput)

	_, err = svc.Register(context.Background(), 1, "SCALE-01", "x")
	require.ErrorIs(t, err, app.ErrConflict)
}

func TestDeviceApprove_IssuesVerifiableToken(t *testing.T) {
	tokens := app.NewDeviceTokens("secret", time.Hour)
	repo := deviceRepoWith(domain.Device{ID: "d1", OwnerID: 1, Serial: "S1", Status: domain.DevicePending})
	var setTo domain.DeviceStatus
	repo.setFn = func(_ context.Context, _ string, status domain.DeviceStatus, _ time.Time) error {
		setTo = status
		return nil
	}
	svc := app.NewDeviceService(repo, tokens)

	d, token, err := svc.Approve(context.Background(), 1, "d1")
	require.NoError(t, err)
	require.Equal(t, domain.DeviceActive, d.Status)
	require.NotNil(t, d.ApprovedAt)
	require.Equal(t, domain.DeviceActive, setTo)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "d1", id)
}

func TestDeviceApprove_OtherOwner(t *testing.T) {
	repo := deviceRepoWith(domain.Device{ID: "d1", OwnerID: 1, Status: domain.DevicePending})
	svc := app.NewDeviceService(repo, app.NewDeviceTokens("secret", 0))
	_, _, err := svc.Approve(context.Background(), 2, "d1")
	require.ErrorIs(t, err, app.ErrNotFound)
}

func TestDeviceTransitions(t *testing.T) {
	tests := []struct {
		from    domain.DeviceStatus
		wantErr bool
	}{
		{domain.DeviceActive, false},
		{domain.DevicePending, true},
		{domain.DeviceInactive, true},
	}
	for _, tc := range tests {
		t.Run(string(tc.from), func(t *testing.T) {
			repo := deviceRepoWith(domain.Device{ID: "d1", OwnerID: 1, Status: tc.from})
			svc := app.NewDeviceService(repo, app.NewDeviceTokens("secret", 0))
			d, err := svc.Deactivate(context.Background(), 1, "d1")
			if tc.wantErr {
				require.ErrorIs(t, err, app.ErrInvalidTransition)
				return
			}
			require.NoError(t, err)
			require.Equal(t, domain.DeviceInactive, d.Status)
		})
	}
}

func TestDeviceTokens_Reject(t *testing.T) {
	tokens := app.NewDeviceTokens("secret", 0)
	other := app.NewDeviceTokens("other-secret", 0)
	token, err := other.Issue("d1", "S1")
	require.NoError(t, err)

	for _, bad := range []string{"", "garbage", token} {
		_, err := tokens.Verify(bad)
		require.ErrorIs(t, err, app.ErrInvalidDeviceToken)
	}
}
