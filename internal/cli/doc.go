// Package cli is the interactive terminal front-end of accesskeeper.
//
// The REPL keeps one selected user and forwards commands to access.Service:
//
//	help                 show available commands
//	register             create a user and select it
//	use <id>             select an existing user
//	users                list users with their status
//	login                authenticate the selected user with a password
//	bio                  authenticate the selected user biometrically
//	enroll               show the biometric activation prompt
//	status | attempts    inspect the selected user
//	methods              list supported and possible methods
//	passwd               change the password (requires an active session)
//	logout               end the session
//	delete               delete the selected user (requires an active session)
//	exit | quit          leave the program
//
// Passwords are read without echo and wiped after use. Biometric challenges
// are answered on the console by a stand-in device.
package cli
