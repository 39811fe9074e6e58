// Package auth provides credential verification and JWT token handling for
// the HTTP API.
//
// Passwords are stored as Argon2id PHC hashes and verified in constant
// time. Access tokens are HS256-signed JWTs validated by signature only,
// so protected routes never touch the database.
//
// # Key Types
//
//   - Claims: JWT claims carried by access tokens
//   - HashPassword / VerifyPassword: Argon2id hashing
//   - GenerateAccessToken / ParseToken: token lifecycle
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package auth
