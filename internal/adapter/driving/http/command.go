package httphandler

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/saloprj/dialogbrain-cookie-sync/internal/domain/model"
)

// The inbound command protocol is a closed tagged-variant set per channel:
// a JSON envelope {"type": ...} decoded into one concrete command type and
// dispatched by exhaustive type switch. Adding a command means adding a type
// here and a switch arm in the handler; the compiler guards the rest.

// internalCommand marks commands accepted on the trusted internal channel.
type internalCommand interface{ isInternalCommand() }

// externalCommand marks commands accepted on the untrusted external channel.
type externalCommand interface{ isExternalCommand() }

type getStatusCommand struct{}

func (getStatusCommand) isInternalCommand() {}
func (getStatusCommand) isExternalCommand() {}

type manualSyncCommand struct {
	Platform model.Platform
}

func (manualSyncCommand) isInternalCommand() {}

type setAuthTokenCommand struct {
	Token string
}

func (setAuthTokenCommand) isInternalCommand() {}
func (setAuthTokenCommand) isExternalCommand() {}

type logoutCommand struct{}

func (logoutCommand) isInternalCommand() {}

type checkPresenceCommand struct{}

func (checkPresenceCommand) isInternalCommand() {}
func (checkPresenceCommand) isExternalCommand() {}

type pingCommand struct{}

func (pingCommand) isExternalCommand() {}

type triggerSyncCommand struct {
	// Platforms is the expansion of the requested target; "all" becomes
	// every supported platform.
	Platforms []model.Platform
}

func (triggerSyncCommand) isExternalCommand() {}

// commandEnvelope is the raw wire shape shared by both channels.
type commandEnvelope struct {
	Type     string `json:"type"`
	Platform string `json:"platform,omitempty"`
	Token    string `json:"token,omitempty"`
}

func decodeEnvelope(r io.Reader) (commandEnvelope, error) {
	var env commandEnvelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return env, fmt.Errorf("invalid command body: %w", err)
	}
	return env, nil
}

// decodeInternalCommand parses a request body into one of the internal
// channel's commands.
func decodeInternalCommand(r io.Reader) (internalCommand, error) {
	env, err := decodeEnvelope(r)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case "get_status":
		return getStatusCommand{}, nil
	case "manual_sync":
		platform, err := model.ParsePlatform(env.Platform)
		if err != nil {
			return nil, err
		}
		return manualSyncCommand{Platform: platform}, nil
	case "set_auth_token":
		if env.Token == "" {
			return nil, fmt.Errorf("set_auth_token requires a token")
		}
		return setAuthTokenCommand{Token: env.Token}, nil
	case "logout":
		return logoutCommand{}, nil
	case "check_session_presence":
		return checkPresenceCommand{}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", env.Type)
	}
}

// decodeExternalCommand parses a request body into one of the external
// channel's commands.
func decodeExternalCommand(r io.Reader) (externalCommand, error) {
	env, err := decodeEnvelope(r)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case "ping":
		return pingCommand{}, nil
	case "get_status":
		return getStatusCommand{}, nil
	case "set_auth_token":
		if env.Token == "" {
			return nil, fmt.Errorf("set_auth_token requires a token")
		}
		return setAuthTokenCommand{Token: env.Token}, nil
	case "check_session_presence":
		return checkPresenceCommand{}, nil
	case "trigger_sync":
		if env.Platform == "all" {
			return triggerSyncCommand{Platforms: model.Platforms}, nil
		}
		platform, err := model.ParsePlatform(env.Platform)
		if err != nil {
			return nil, err
		}
		return triggerSyncCommand{Platforms: []model.Platform{platform}}, nil
	default:
		return nil, fmt.Errorf("unknown command type %q", env.Type)
	}
}
