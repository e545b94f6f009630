package actuator

import (
	"errors"
)

// Application errors
var (
	// Configuration errors
	ErrConfigSectionNotFound = errors.New("config section not found")
	ErrApplicationNil        = errors.New("application is nil")
	ErrConfigProviderNil     = errors.New("config provider is nil")
	ErrConfigFeederError     = errors.New("config feeder error")
	ErrConfigValidation      = errors.New("config validation failed")

	// Service registry errors
	ErrServiceNotFound = errors.New("service not found")

	// Service injection errors
	ErrTargetNotPointer    = errors.New("target must be a non-nil pointer")
	ErrTargetValueInvalid  = errors.New("target value is invalid")
	ErrServiceIncompatible = errors.New("service cannot be assigned to target")

	// Dependency resolution errors
	ErrCircularDependency          = errors.New("circular dependency detected")
	ErrModuleDependencyMissing     = errors.New("module depends on non-existent module")
	ErrRequiredServiceNotFound     = errors.New("required service not found for module")
	ErrAutoConfigurationDependency = errors.New("user module cannot depend on an auto-configuration module")

	// Lifecycle errors
	ErrAlreadyInitialized = errors.New("application already initialized")
	ErrNotInitialized     = errors.New("application not initialized")

	// Builder errors
	ErrLoggerNotSet = errors.New("logger not set in application builder")

	// Observer errors
	ErrObserverNil           = errors.New("observer is nil")
	ErrObserverNotRegistered = errors.New("observer not registered")

	// Health aggregation errors
	ErrModuleNameEmpty       = errors.New("module name cannot be empty")
	ErrProviderNil           = errors.New("provider cannot be nil")
	ErrProviderAlreadyExists = errors.New("provider already registered")
	ErrProviderNotRegistered = errors.New("no provider registered")
)
