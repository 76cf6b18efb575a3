package services

import (
	"context"
	"fmt"
	"time"

	"github.com/callspace/conferencing/pkg/internal/models"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go"
	"github.com/spf13/viper"
)

// LiveKitProvider backs calls of the "webrtc" provider type with LiveKit
// rooms. The room name is the call id; join credentials are LiveKit video
// grants scoped to that room.
type LiveKitProvider struct {
	client *lksdk.RoomServiceClient
}

func NewLiveKitProvider() *LiveKitProvider {
	host := "https://" + viper.GetString("calling.endpoint")
	return &LiveKitProvider{
		client: lksdk.NewRoomServiceClient(
			host,
			viper.GetString("calling.api_key"),
			viper.GetString("calling.api_secret"),
		),
	}
}

func (p *LiveKitProvider) Type() string  { return "webrtc" }
func (p *LiveKitProvider) Title() string { return "WebRTC" }

func (p *LiveKitProvider) OnCallStarted(call *models.Call) error {
	_, err := p.client.CreateRoom(context.Background(), &livekit.CreateRoomRequest{
		Name:            call.ID,
		EmptyTimeout:    viper.GetUint32("calling.empty_timeout_duration"),
		MaxParticipants: viper.GetUint32("calling.max_participants"),
	})
	if err != nil {
		return fmt.Errorf("remote livekit error: %v", err)
	}
	return nil
}

func (p *LiveKitProvider) OnCallStopped(call *models.Call) error {
	_, err := p.client.DeleteRoom(context.Background(), &livekit.DeleteRoomRequest{
		Room: call.ID,
	})
	return err
}

func (p *LiveKitProvider) JoinToken(call *models.Call, userID string, moderator bool) (string, error) {
	grant := &auth.VideoGrant{
		Room:      call.ID,
		RoomJoin:  true,
		RoomAdmin: moderator,
	}

	duration := time.Second * time.Duration(viper.GetInt("calling.token_duration"))
	tk := auth.NewAccessToken(viper.GetString("calling.api_key"), viper.GetString("calling.api_secret"))
	tk.AddGrant(grant).
		SetIdentity(userID).
		SetValidFor(duration)

	return tk.ToJWT()
}
