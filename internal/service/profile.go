package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iliyamo/waste-pickup-service/internal/config"
	"github.com/iliyamo/waste-pickup-service/internal/model"
	"github.com/iliyamo/waste-pickup-service/internal/repository"
	"github.com/iliyamo/waste-pickup-service/pkg/logger"
)

// DetailHistoryLimit is how many location history rows a profile detail
// carries.
const DetailHistoryLimit = 5

// ProfileStore is the part of *repository.WasteProfileRepo the profile
// workflow uses.
type ProfileStore interface {
	Create(ctx context.Context, p model.WasteProfile, history *model.LocationHistory) (uint64, error)
	Update(ctx context.Context, p model.WasteProfile, history *model.LocationHistory) error
	GetByID(ctx context.Context, id uint64) (model.WasteProfile, error)
	GetForUser(ctx context.Context, id, userID uint64) (model.WasteProfile, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.WasteProfile, error)
	ListGeolocatedByUser(ctx context.Context, userID uint64) ([]model.WasteProfile, error)
	DeleteForUser(ctx context.Context, id, userID uint64) error
}

// RegionChecker verifies a state/district/local body selection.
type RegionChecker interface {
	LocalBodyInDistrict(ctx context.Context, stateID, districtID, localBodyID uint64) (bool, error)
}

// HistoryReader lists location history.
type HistoryReader interface {
	ListByProfile(ctx context.Context, profileID uint64, limit int) ([]model.LocationHistory, error)
}

// BookingReader lists the dates booked with a profile.
type BookingReader interface {
	ListForProfile(ctx context.Context, profileID uint64) ([]repository.BookedDate, error)
}

// ProfileInput is a validated profile create or update request.
// Latitude and Longitude stay raw strings; invalid or partial coordinates
// are treated as absent rather than rejected.
type ProfileInput struct {
	FullName        string
	SecondaryNumber string
	PickupAddress   string
	Landmark        string
	Pincode         string
	Latitude        string
	Longitude       string
	StateID         uint64
	DistrictID      uint64
	LocalBodyID     uint64
	Ward            int
	NumberOfBags    int
	WasteType       string
	Comments        string
	SelectedDate    string
}

func (in ProfileInput) validate() error {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return fmt.Errorf("%w: full_name is required", ErrInvalidInput)
	case strings.TrimSpace(in.PickupAddress) == "":
		return fmt.Errorf("%w: pickup_address is required", ErrInvalidInput)
	case in.StateID == 0 || in.DistrictID == 0 || in.LocalBodyID == 0:
		return fmt.Errorf("%w: state, district and localbody are required", ErrInvalidInput)
	case !config.ValidWard(in.Ward):
		return fmt.Errorf("%w: ward must be between 1 and %d", ErrInvalidInput, config.MaxWard)
	case in.NumberOfBags < 1:
		return fmt.Errorf("%w: number_of_bags must be at least 1", ErrInvalidInput)
	case strings.TrimSpace(in.WasteType) == "":
		return fmt.Errorf("%w: waste_type is required", ErrInvalidInput)
	}
	return nil
}

// ValidateCoordinates parses a latitude/longitude pair.  ok is false when
// either value is missing, not a decimal number, or out of range.
func ValidateCoordinates(rawLat, rawLng string) (lat, lng float64, ok bool) {
	rawLat, rawLng = strings.TrimSpace(rawLat), strings.TrimSpace(rawLng)
	if rawLat == "" || rawLng == "" {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || math.IsNaN(lat) {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(rawLng, 64)
	if err != nil || math.IsNaN(lng) {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

// sameCoordinate compares at the six decimal places the store keeps.
func sameCoordinate(a, b float64) bool {
	return math.Round(a*1e6) == math.Round(b*1e6)
}

// ProfileResult is returned by create and update.
type ProfileResult struct {
	Profile         model.WasteProfile `json:"profile"`
	LocationTracked bool               `json:"location_tracked"`
	LocationChanged bool               `json:"location_changed"`
	Bookings        Outcome            `json:"bookings"`
	// BookingFailed is set when the profile was saved but the ledger
	// rejected the selection; resubmitting the dates on update retries it.
	BookingFailed bool `json:"booking_failed,omitempty"`
}

// ProfileDetail is a profile with its booked dates and recent positions.
type ProfileDetail struct {
	Profile  model.WasteProfile      `json:"profile"`
	Bookings []repository.BookedDate `json:"bookings"`
	History  []model.LocationHistory `json:"location_history"`
}

// ProfileService runs the customer waste profile workflows.
type ProfileService struct {
	profiles    ProfileStore
	regions     RegionChecker
	history     HistoryReader
	bookings    BookingReader
	coordinator *Coordinator
	log         logger.Logger
}

func NewProfileService(profiles ProfileStore, regions RegionChecker, history HistoryReader, bookings BookingReader, coordinator *Coordinator, log logger.Logger) *ProfileService {
	return &ProfileService{
		profiles:    profiles,
		regions:     regions,
		history:     history,
		bookings:    bookings,
		coordinator: coordinator,
		log:         log,
	}
}

func (s *ProfileService) checkRegion(ctx context.Context, in ProfileInput) error {
	ok, err := s.regions.LocalBodyInDistrict(ctx, in.StateID, in.DistrictID, in.LocalBodyID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: localbody does not belong to the selected district and state", ErrInvalidInput)
	}
	return nil
}

func applyInput(p *model.WasteProfile, in ProfileInput) {
	p.FullName = strings.TrimSpace(in.FullName)
	p.SecondaryNumber = strings.TrimSpace(in.SecondaryNumber)
	p.PickupAddress = strings.TrimSpace(in.PickupAddress)
	p.Landmark = strings.TrimSpace(in.Landmark)
	p.Pincode = strings.TrimSpace(in.Pincode)
	p.StateID = in.StateID
	p.DistrictID = in.DistrictID
	p.LocalBodyID = in.LocalBodyID
	p.Ward = in.Ward
	p.WardName = config.WardName(in.Ward)
	p.NumberOfBags = in.NumberOfBags
	p.WasteType = strings.TrimSpace(in.WasteType)
	p.Comments = strings.TrimSpace(in.Comments)
}

// Create stores a new profile for the customer and books its selected
// dates.
func (s *ProfileService) Create(ctx context.Context, customerID uint64, in ProfileInput) (ProfileResult, error) {
	return s.create(ctx, customerID, customerID, in)
}

// CreateForCustomer is the administrator variant: actorID is recorded as
// the author of the first location history row.
func (s *ProfileService) CreateForCustomer(ctx context.Context, customerID, actorID uint64, in ProfileInput) (ProfileResult, error) {
	return s.create(ctx, customerID, actorID, in)
}

func (s *ProfileService) create(ctx context.Context, customerID, actorID uint64, in ProfileInput) (ProfileResult, error) {
	if err := in.validate(); err != nil {
		return ProfileResult{}, err
	}
	if err := s.checkRegion(ctx, in); err != nil {
		return ProfileResult{}, err
	}

	p := model.WasteProfile{UserID: customerID, Status: model.ProfileStatusPending}
	applyInput(&p, in)

	var history *model.LocationHistory
	if lat, lng, ok := ValidateCoordinates(in.Latitude, in.Longitude); ok {
		p.Latitude, p.Longitude = &lat, &lng
		history = &model.LocationHistory{Latitude: lat, Longitude: lng, ChangedBy: &actorID}
	}

	id, err := s.profiles.Create(ctx, p, history)
	if err != nil {
		return ProfileResult{}, err
	}
	p.ID = id

	outcome, failed := s.submit(ctx, Submission{CustomerID: customerID, ProfileID: id, Raw: in.SelectedDate})
	s.log.Info("waste profile created",
		"waste_profile_id", id,
		"customer_id", customerID,
		"location_tracked", history != nil,
		"booked", outcome.Booked)
	return ProfileResult{
		Profile:         p,
		LocationTracked: history != nil,
		LocationChanged: history != nil,
		Bookings:        outcome,
		BookingFailed:   failed,
	}, nil
}

// submit runs the booking step after the profile row is committed.  A
// ledger failure is logged and reported in the result, so the caller
// never retries a profile write that already succeeded.
func (s *ProfileService) submit(ctx context.Context, sub Submission) (Outcome, bool) {
	outcome, err := s.coordinator.Submit(ctx, sub)
	if err != nil {
		s.log.Error("booking selected dates failed",
			"waste_profile_id", sub.ProfileID,
			"customer_id", sub.CustomerID,
			"error", err)
		return emptyOutcome(), true
	}
	return outcome, false
}

// Update edits a profile the customer owns.  A non-empty selected date
// list replaces the profile's bookings; an empty one keeps them.
func (s *ProfileService) Update(ctx context.Context, customerID, profileID uint64, in ProfileInput) (ProfileResult, error) {
	existing, err := s.profiles.GetForUser(ctx, profileID, customerID)
	if err != nil {
		return ProfileResult{}, err
	}
	return s.update(ctx, existing, customerID, in)
}

// UpdateAny is the administrator variant of Update; bookings stay with the
// profile's owner.
func (s *ProfileService) UpdateAny(ctx context.Context, actorID, profileID uint64, in ProfileInput) (ProfileResult, error) {
	existing, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return ProfileResult{}, err
	}
	return s.update(ctx, existing, actorID, in)
}

func (s *ProfileService) update(ctx context.Context, existing model.WasteProfile, actorID uint64, in ProfileInput) (ProfileResult, error) {
	if err := in.validate(); err != nil {
		return ProfileResult{}, err
	}
	if err := s.checkRegion(ctx, in); err != nil {
		return ProfileResult{}, err
	}

	p := existing
	applyInput(&p, in)

	var history *model.LocationHistory
	lat, lng, ok := ValidateCoordinates(in.Latitude, in.Longitude)
	if ok {
		changed := !existing.HasLocation() ||
			!sameCoordinate(*existing.Latitude, lat) ||
			!sameCoordinate(*existing.Longitude, lng)
		p.Latitude, p.Longitude = &lat, &lng
		if changed {
			history = &model.LocationHistory{Latitude: lat, Longitude: lng, ChangedBy: &actorID}
		}
	} else {
		p.Latitude, p.Longitude = nil, nil
	}

	if err := s.profiles.Update(ctx, p, history); err != nil {
		return ProfileResult{}, err
	}

	outcome, failed := s.submit(ctx, Submission{
		CustomerID: existing.UserID,
		ProfileID:  existing.ID,
		Raw:        in.SelectedDate,
		Replace:    true,
	})
	s.log.Info("waste profile updated",
		"waste_profile_id", existing.ID,
		"actor_id", actorID,
		"location_changed", history != nil,
		"booked", outcome.Booked)
	return ProfileResult{
		Profile:         p,
		LocationTracked: ok,
		LocationChanged: history != nil,
		Bookings:        outcome,
		BookingFailed:   failed,
	}, nil
}

// List returns the customer's profiles.
func (s *ProfileService) List(ctx context.Context, customerID uint64) ([]model.WasteProfile, error) {
	profiles, err := s.profiles.ListByUser(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return withWardNames(profiles), nil
}

// Export returns the customer's profiles that have coordinates.
func (s *ProfileService) Export(ctx context.Context, customerID uint64) ([]model.WasteProfile, error) {
	profiles, err := s.profiles.ListGeolocatedByUser(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return withWardNames(profiles), nil
}

// Detail loads a profile the customer owns with its bookings and the most
// recent location history.
func (s *ProfileService) Detail(ctx context.Context, customerID, profileID uint64) (ProfileDetail, error) {
	p, err := s.profiles.GetForUser(ctx, profileID, customerID)
	if err != nil {
		return ProfileDetail{}, err
	}
	return s.detail(ctx, p)
}

// DetailAny is the administrator variant of Detail.
func (s *ProfileService) DetailAny(ctx context.Context, profileID uint64) (ProfileDetail, error) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return ProfileDetail{}, err
	}
	return s.detail(ctx, p)
}

func (s *ProfileService) detail(ctx context.Context, p model.WasteProfile) (ProfileDetail, error) {
	p.WardName = config.WardName(p.Ward)
	booked, err := s.bookings.ListForProfile(ctx, p.ID)
	if err != nil {
		return ProfileDetail{}, err
	}
	history, err := s.history.ListByProfile(ctx, p.ID, DetailHistoryLimit)
	if err != nil {
		return ProfileDetail{}, err
	}
	return ProfileDetail{Profile: p, Bookings: booked, History: history}, nil
}

// History returns the full location history of a profile the customer owns.
func (s *ProfileService) History(ctx context.Context, customerID, profileID uint64) ([]model.LocationHistory, error) {
	if _, err := s.profiles.GetForUser(ctx, profileID, customerID); err != nil {
		return nil, err
	}
	return s.history.ListByProfile(ctx, profileID, 0)
}

// Delete removes a profile the customer owns.
func (s *ProfileService) Delete(ctx context.Context, customerID, profileID uint64) error {
	if err := s.profiles.DeleteForUser(ctx, profileID, customerID); err != nil {
		return err
	}
	s.log.Info("waste profile deleted", "waste_profile_id", profileID, "customer_id", customerID)
	return nil
}

func withWardNames(profiles []model.WasteProfile) []model.WasteProfile {
	for i := range profiles {
		profiles[i].WardName = config.WardName(profiles[i].Ward)
	}
	return profiles
}
