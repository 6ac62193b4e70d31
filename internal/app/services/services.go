// Package services holds the business logic between the HTTP controllers
// and the repositories.
//
// Services defined in this package:
//   - AuthService: school registration, login and account activation
//   - AccountService: staff-driven account invitations and deactivation
//   - ClassService: classes and teacher assignment
//   - StudentService: students and guardian links
//   - MessagingService: conversations, participants, messages and read state
package services
