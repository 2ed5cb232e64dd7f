package services

import (
	"techlearn/catalog"
	"techlearn/certificate"
	"techlearn/identity"
	"techlearn/logger"
	"techlearn/session"
	"techlearn/tutor"
	"techlearn/utils"
)

// Container holds the long-lived services the HTTP handlers work with.
type Container struct {
	Log      *logger.Logger
	Catalog  *catalog.Catalog
	Sessions *session.Registry
	Accounts *identity.Accounts
	Exporter *certificate.Exporter
	Tutor    *tutor.Client
	Mailer   utils.Mailer
}

// App is the container used by the handlers. It is set once at startup.
var App *Container
