package pdfops

import (
	"context"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pixbatch/internal/batch"
)

const aesKeyLength = 256

// Protect encrypts src with AES-256. The owner password defaults to the user
// password.
func Protect(ctx context.Context, src, dst, userPW, ownerPW string) error {
	if userPW == "" {
		return ErrEmptyPassword
	}
	if ownerPW == "" {
		ownerPW = userPW
	}
	if err := batch.Checkpoint(ctx); err != nil {
		return err
	}

	conf := model.NewAESConfiguration(userPW, ownerPW, aesKeyLength)
	conf.ValidationMode = model.ValidationRelaxed

	return writeVia(dst, func(tmp string) error {
		if err := api.EncryptFile(src, tmp, conf); err != nil {
			return fmt.Errorf("encrypt failed: %w", err)
		}
		return nil
	})
}

// Unlock removes the encryption of src using password
func Unlock(ctx context.Context, src, dst, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if err := batch.Checkpoint(ctx); err != nil {
		return err
	}

	conf := NewConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	return writeVia(dst, func(tmp string) error {
		if err := api.DecryptFile(src, tmp, conf); err != nil {
			return fmt.Errorf("decrypt failed: %w", err)
		}
		return nil
	})
}
