package processor

import (
	"fmt"

	"github.com/nebel/CurrencyWatchdog/internal/expr"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
	"github.com/nebel/CurrencyWatchdog/internal/zone"
)

// Reason is the trigger of an evaluation pass.
type Reason int

const (
	ReasonConfigChange Reason = iota
	ReasonInventoryChange
	ReasonCurrencyChange
	ReasonAllowanceChange
	ReasonLogin
	ReasonLoginZoned
	ReasonTerritoryZoned
	ReasonResendAlerts
)

var reasonNames = map[Reason]string{
	ReasonConfigChange:    "config_change",
	ReasonInventoryChange: "inventory_change",
	ReasonCurrencyChange:  "currency_change",
	ReasonAllowanceChange: "allowance_change",
	ReasonLogin:           "login",
	ReasonLoginZoned:      "login_zoned",
	ReasonTerritoryZoned:  "territory_zoned",
	ReasonResendAlerts:    "resend_alerts",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// RedrawPolicy decides whether the overlay is redrawn after a pass.
type RedrawPolicy int

const (
	RedrawSkip RedrawPolicy = iota
	RedrawForce
	RedrawIfChanged
)

func (p RedrawPolicy) String() string {
	switch p {
	case RedrawSkip:
		return "skip"
	case RedrawForce:
		return "force"
	case RedrawIfChanged:
		return "if_changed"
	default:
		return fmt.Sprintf("RedrawPolicy(%d)", int(p))
	}
}

// ChatPolicy decides which chat alerts are sent after a pass.
type ChatPolicy int

const (
	ChatSuppress ChatPolicy = iota
	ChatSendAll
	ChatSendNew
)

func (p ChatPolicy) String() string {
	switch p {
	case ChatSuppress:
		return "suppress"
	case ChatSendAll:
		return "send_all"
	case ChatSendNew:
		return "send_new"
	default:
		return fmt.Sprintf("ChatPolicy(%d)", int(p))
	}
}

// Policy is the action pair chosen for one reason.
type Policy struct {
	Reason Reason
	Redraw RedrawPolicy
	Chat   ChatPolicy
}

// PolicyFor maps a reason to its redraw and chat policies. Update-driven chat
// is suppressed until the login has fully settled. A manual resend always
// sends everything. Unknown enum values panic with *expr.ContractError.
func PolicyFor(reason Reason, s *settings.Settings, state zone.LoginState) Policy {
	p := Policy{Reason: reason}
	complete := state == zone.StateComplete

	switch reason {
	case ReasonConfigChange:
		p.Redraw, p.Chat = RedrawForce, ChatSuppress
	case ReasonInventoryChange, ReasonCurrencyChange, ReasonAllowanceChange:
		p.Redraw, p.Chat = RedrawIfChanged, ChatSuppress
		if complete {
			p.Chat = fromUpdateAction(s.Chat.UpdateAction)
		}
	case ReasonLogin:
		p.Redraw, p.Chat = RedrawForce, ChatSuppress
	case ReasonLoginZoned:
		p.Redraw, p.Chat = RedrawSkip, ChatSuppress
		if complete {
			p.Chat = fromZoneAction(s.Chat.LoginAction)
		}
	case ReasonTerritoryZoned:
		p.Redraw, p.Chat = RedrawSkip, ChatSuppress
		if complete {
			p.Chat = fromZoneAction(s.Chat.ZoneAction)
		}
	case ReasonResendAlerts:
		p.Redraw, p.Chat = RedrawSkip, ChatSendAll
	default:
		panic(&expr.ContractError{Kind: "reason", Value: int(reason)})
	}

	return p
}

func fromZoneAction(a settings.ZoneAction) ChatPolicy {
	switch a {
	case settings.ZoneActionNone:
		return ChatSuppress
	case settings.ZoneActionAll:
		return ChatSendAll
	default:
		panic(&expr.ContractError{Kind: "zone action", Value: int(a)})
	}
}

func fromUpdateAction(a settings.UpdateAction) ChatPolicy {
	switch a {
	case settings.UpdateActionNone:
		return ChatSuppress
	case settings.UpdateActionAll:
		return ChatSendAll
	case settings.UpdateActionNew:
		return ChatSendNew
	default:
		panic(&expr.ContractError{Kind: "update action", Value: int(a)})
	}
}
