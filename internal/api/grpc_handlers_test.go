package api

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	bookingv1 "medibook/internal/api/gen/booking/v1"
	"medibook/internal/config"
	"medibook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// newBookingClient serves the full interceptor chain over bufconn.
func newBookingClient(t *testing.T) bookingv1.BookingServiceClient {
	t.Helper()
	env := newTestEnv(t)

	cfg := config.APIConfig{
		Enabled: true,
		GRPC:    config.APIGRPCConfig{Enabled: true, Port: 0},
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{
				{Key: "reader", Extra: "e", Permissions: []string{"read"}},
				{Key: "gateway", Extra: "e", Permissions: []string{"read", "write"}},
			},
		},
	}
	logger := zerolog.New(io.Discard)
	srv, err := NewGRPCServer(&cfg, env.bookings, nil, &logger)
	require.NoError(t, err)

	_ = srv.listener.Close()
	lis := bufconn.Listen(1 << 20)
	srv.listener = lis

	go func() { _ = srv.Serve() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return bookingv1.NewBookingServiceClient(conn)
}

func callCtx(t *testing.T, apiKey string, actor *models.Actor) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	pairs := []string{}
	if apiKey != "" {
		pairs = append(pairs, apiKeyHeaderDefault, apiKey, apiExtraHeaderDefault, "e")
	}
	if actor != nil {
		pairs = append(pairs,
			strings.ToLower(headerActorRole), actor.Role,
			strings.ToLower(headerActorID), strconv.FormatInt(actor.ID, 10))
		if actor.Kind != "" {
			pairs = append(pairs, strings.ToLower(headerActorKind), string(actor.Kind))
		}
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

func TestGRPCBooking_CheckAvailability(t *testing.T) {
	client := newBookingClient(t)

	resp, err := client.CheckAvailability(callCtx(t, "reader", nil), &bookingv1.CheckAvailabilityRequest{
		Kind: "appointment", ProviderId: 10, Date: "2025-03-10",
	})
	require.NoError(t, err)
	assert.True(t, resp.GetAvailableThisDay())
	assert.Equal(t, int32(1), resp.GetDayOfWeek())
	require.Len(t, resp.GetSlots(), 4)
	assert.Equal(t, "09:00", resp.GetSlots()[0].GetTime())
	assert.Equal(t, int32(30), resp.GetSlots()[0].GetDurationMinutes())
	assert.Equal(t, 2500.0, resp.GetSlots()[0].GetFee())

	tests := []struct {
		name string
		req  *bookingv1.CheckAvailabilityRequest
		want codes.Code
	}{
		{"MissingDate", &bookingv1.CheckAvailabilityRequest{Kind: "appointment", ProviderId: 10}, codes.InvalidArgument},
		{"BadDate", &bookingv1.CheckAvailabilityRequest{Kind: "appointment", ProviderId: 10, Date: "10-03-2025"}, codes.InvalidArgument},
		{"UnknownKind", &bookingv1.CheckAvailabilityRequest{Kind: "dental", ProviderId: 10, Date: "2025-03-10"}, codes.InvalidArgument},
		{"UnknownProvider", &bookingv1.CheckAvailabilityRequest{Kind: "appointment", ProviderId: 77, Date: "2025-03-10"}, codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.CheckAvailability(callCtx(t, "reader", nil), tt.req)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}

	_, err = client.CheckAvailability(callCtx(t, "", nil), &bookingv1.CheckAvailabilityRequest{
		Kind: "appointment", ProviderId: 10, Date: "2025-03-10",
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestGRPCBooking_CreateAndGet(t *testing.T) {
	client := newBookingClient(t)
	req := &bookingv1.CreateBookingRequest{
		Kind: "appointment", SubjectId: 100, ProviderId: 10, Date: "2025-03-10", Time: "09:30",
	}

	_, err := client.CreateBooking(callCtx(t, "reader", patient), req)
	assert.Equal(t, codes.PermissionDenied, status.Code(err), "read key cannot create")

	_, err = client.CreateBooking(callCtx(t, "gateway", nil), req)
	assert.Equal(t, codes.Unauthenticated, status.Code(err), "actor metadata required")

	_, err = client.CreateBooking(callCtx(t, "gateway", &models.Actor{ID: 10, Role: models.RoleProvider}), req)
	assert.Equal(t, codes.Unauthenticated, status.Code(err), "provider without kind")

	created, err := client.CreateBooking(callCtx(t, "gateway", patient), req)
	require.NoError(t, err)
	b := created.GetBooking()
	assert.Positive(t, b.GetId())
	assert.Equal(t, "appointment", b.GetKind())
	assert.Equal(t, models.StatusScheduled, b.GetStatus())
	assert.Equal(t, 2500.0, b.GetFee())
	assert.Zero(t, b.GetResourceId())

	_, err = client.CreateBooking(callCtx(t, "gateway", admin), &bookingv1.CreateBookingRequest{
		Kind: "appointment", SubjectId: 101, ProviderId: 10, Date: "2025-03-10", Time: "09:30",
	})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = client.CreateBooking(callCtx(t, "gateway", patient), &bookingv1.CreateBookingRequest{
		Kind: "appointment", SubjectId: 101, ProviderId: 10, Date: "2025-03-10", Time: "10:00",
	})
	assert.Equal(t, codes.PermissionDenied, status.Code(err), "patient books for someone else")

	got, err := client.GetBooking(callCtx(t, "reader", doctor), &bookingv1.GetBookingRequest{Id: b.GetId()})
	require.NoError(t, err)
	assert.Equal(t, "09:30", got.GetBooking().GetTime())

	labTen := &models.Actor{ID: 10, Role: models.RoleProvider, Kind: models.KindLabTest}
	_, err = client.GetBooking(callCtx(t, "reader", labTen), &bookingv1.GetBookingRequest{Id: b.GetId()})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = client.GetBooking(callCtx(t, "reader", admin), &bookingv1.GetBookingRequest{Id: 9999})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetBooking(callCtx(t, "reader", admin), &bookingv1.GetBookingRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCBooking_DescriptorRegistered(t *testing.T) {
	d, err := protoregistry.GlobalFiles.FindDescriptorByName(BookingServiceName)
	require.NoError(t, err)
	assert.Equal(t, "booking/v1/booking.proto", d.ParentFile().Path())
	assert.Equal(t, bookingv1.BookingService_ServiceDesc.ServiceName, string(d.FullName()))
}

func TestRequiredPermission_GRPC(t *testing.T) {
	assert.Equal(t, "", requiredPermission("/grpc.health.v1.Health/Check"))
	assert.Equal(t, permRead, requiredPermission(bookingv1.BookingService_CheckAvailability_FullMethodName))
	assert.Equal(t, permRead, requiredPermission(bookingv1.BookingService_GetBooking_FullMethodName))
	assert.Equal(t, permWrite, requiredPermission(bookingv1.BookingService_CreateBooking_FullMethodName))
}
