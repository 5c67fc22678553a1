package internal

import (
	"k8s.io/klog/v2"

	"github.com/gbif/occurrence-annotation/internal/handler"
)

// registerManagers instantiates every manager that registered itself
// through handler.Registers.
func registerManagers(config handler.RegisterConfig) []handler.Manager {
	var managers []handler.Manager
	for _, register := range handler.Registers {
		manager := register(config)
		managers = append(managers, manager)
		klog.Infof("Registered manager: %s", manager.GetName())
	}
	return managers
}
