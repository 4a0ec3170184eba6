package instance

import "time"

// Status is the hypervisor-reported lifecycle state. The hypervisor is
// authoritative; the storefront caches the last seen value and gates
// which actions it will forward.
type Status string

const (
	Provisioning  Status = "PROVISIONING"
	Configuring   Status = "CONFIGURING"
	WaitForSSHKey Status = "WAIT_FOR_USER_UPDATE_SSH_KEY"
	Starting      Status = "STARTING"
	Running       Status = "RUNNING"
	Stopping      Status = "STOPPING"
	Stopped       Status = "STOPPED"
	Restarting    Status = "RESTARTING"
	Suspending    Status = "SUSPENDING"
	Suspended     Status = "SUSPENDED"
	Error         Status = "ERROR"
)

type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
	ActionSuspend Action = "suspend"
	ActionConsole Action = "console"
)

// allowed is the action gating table. Transitional states and ERROR
// offer nothing; the server rejects early and lets the hypervisor
// settle everything else.
var allowed = map[Status]map[Action]bool{
	Running:   {ActionStop: true, ActionRestart: true, ActionSuspend: true, ActionConsole: true},
	Stopped:   {ActionStart: true},
	Suspended: {ActionStart: true},
}

// Allows reports whether the action may be offered in this status.
func (s Status) Allows(a Action) bool {
	return allowed[s][a]
}

// Transitional is the optimistic status shown right after an action is
// accepted, until the next reconciliation.
func (a Action) Transitional() Status {
	switch a {
	case ActionStart:
		return Starting
	case ActionStop:
		return Stopping
	case ActionRestart:
		return Restarting
	case ActionSuspend:
		return Suspending
	default:
		return Error
	}
}

// Settled reports whether the status is stable, i.e. no background
// reconciliation needs to keep watching it.
func (s Status) Settled() bool {
	switch s {
	case Running, Stopped, Suspended, WaitForSSHKey, Error:
		return true
	}
	return false
}

type Instance struct {
	ID           string    `json:"instanceId" db:"instance_id"`
	ExternalVMID string    `json:"externalVmId" db:"external_vm_id"`
	UserID       string    `json:"userId" db:"user_id"`
	OrderItemID  *string   `json:"orderItemId,omitempty" db:"order_item_id"`
	Name         string    `json:"name" db:"name"`
	Status       Status    `json:"status" db:"status"`
	VNCPort      int       `json:"vncPort" db:"vnc_port"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

type StatusUp struct {
	ID        string    `db:"instance_id"`
	Status    Status    `db:"status"`
	VNCPort   int       `db:"vnc_port"`
	UpdatedAt time.Time `db:"updated_at"`
}
