package domain

import "errors"

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrProfileNotFound = errors.New("profile not found")
var ErrInvalidRole = errors.New("invalid role")
var ErrWeakPassword = errors.New("password too weak")
var ErrSessionNotFound = errors.New("session not found")
var ErrInvalidResetToken = errors.New("invalid or expired reset token")
var ErrForbidden = errors.New("access forbidden")
