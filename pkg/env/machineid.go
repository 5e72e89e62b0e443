package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// MachineID returns an app-specific ID of this machine, or "" if the
// machine ID is not available.
func MachineID() string {
	id, err := machineid.ProtectedID("symmetry")
	if err != nil {
		glog.Warningf("machine ID unavailable: %v", err)
		return ""
	}
	return id[:16]
}
