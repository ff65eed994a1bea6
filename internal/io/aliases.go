package io

import "strings"

const (
	JumpActuatorAliasName     = "jump"
	SendJumpActuatorAliasName = "sj_SendOutput"
)

var actuatorAliasToCanonical = map[string]string{
	strings.ToLower(JumpActuatorAliasName):     SpikeJumpActuatorName,
	strings.ToLower(SendJumpActuatorAliasName): SpikeJumpActuatorName,
}

func CanonicalActuatorName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := actuatorAliasToCanonical[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}
