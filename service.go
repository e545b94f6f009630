package actuator

// ServiceProvider describes a service published by a module
type ServiceProvider struct {
	Name        string
	Description string
	Instance    any
}

// ServiceDependency defines a dependency on a service
type ServiceDependency struct {
	Name     string
	Required bool
}
