// Package users stores user records for the access service.
//
// Every backend hands out copies: callers may mutate a returned *models.User
// freely, and nothing they do is visible until Save.
package users
