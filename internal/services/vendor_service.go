package services

import (
	"errors"

	"gorm.io/gorm"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

// VendorService provides the admin-facing operations on vendors.
type VendorService struct {
	vendors repository.VendorRepository
}

// NewVendorService creates and returns a new instance of VendorService.
func NewVendorService(vendors repository.VendorRepository) *VendorService {
	return &VendorService{vendors: vendors}
}

// CreateVendorInput is what an admin supplies when onboarding a vendor.
// The four callback templates should each contain the UID placeholder.
type CreateVendorInput struct {
	Username             string
	Email                string
	CompanyName          string
	CompleteURL          string
	TerminateURL         string
	QuotafullURL         string
	SecurityTerminateURL string
}

// CreateVendor creates a vendor. The secret click token is minted by the
// model at insert time and never regenerated afterwards: it is the sole
// credential tying clicks to this vendor.
func (s *VendorService) CreateVendor(input CreateVendorInput) (*models.Vendor, error) {
	if input.Username == "" {
		return nil, errors.New("vendor username is required")
	}

	vendor := &models.Vendor{
		Username:             input.Username,
		Email:                input.Email,
		CompanyName:          input.CompanyName,
		CompleteURL:          input.CompleteURL,
		TerminateURL:         input.TerminateURL,
		QuotafullURL:         input.QuotafullURL,
		SecurityTerminateURL: input.SecurityTerminateURL,
		Shown:                true,
	}
	if err := s.vendors.CreateVendor(vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// GetVendor retrieves a vendor by username.
func (s *VendorService) GetVendor(username string) (*models.Vendor, error) {
	vendor, err := s.vendors.GetVendorByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrVendorNotFound
		}
		return nil, err
	}
	return vendor, nil
}

// ListVendors returns all visible vendors.
func (s *VendorService) ListVendors() ([]models.Vendor, error) {
	return s.vendors.GetAllVendors()
}

// HideVendor soft-removes a vendor from listings. The row stays because
// ledger records keep referencing the username.
func (s *VendorService) HideVendor(username string) error {
	err := s.vendors.SetVendorShown(username, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return customerrors.ErrVendorNotFound
	}
	return err
}
