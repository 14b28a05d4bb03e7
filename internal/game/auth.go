package game

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/quizboard/internal/quizboard"
)

const tokenBytes = 24

func (e *Engine) issueToken() (token, hash string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generating player token: %w", err)
	}
	token = hex.EncodeToString(buf)
	cost := e.bcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", "", fmt.Errorf("hashing player token: %w", err)
	}
	return token, string(h), nil
}

// Authenticate checks that token belongs to playerID in session code.
func (e *Engine) Authenticate(ctx context.Context, code, playerID, token string) error {
	s, err := e.store.Session(ctx, code)
	if err != nil {
		return err
	}
	p, ok := s.Players[playerID]
	if !ok || token == "" {
		return quizboard.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.TokenHash), []byte(token)); err != nil {
		return quizboard.ErrUnauthorized
	}
	return nil
}
