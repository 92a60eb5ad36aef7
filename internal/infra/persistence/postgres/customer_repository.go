package postgres

import (
	"context"
	"time"

	"concierge/internal/domain/entity"
	domainerrors "concierge/internal/domain/errors"
	"concierge/internal/domain/repository"
	"concierge/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// customerRepository implements the repository.CustomerRepository interface.
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository is the constructor for customerRepository.
func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepository{
		db: db,
	}
}

// Create persists a new customer record.
func (repo *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	customerM := fromCustomerDomain(customer)

	if err := repo.db.WithContext(ctx).Create(customerM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrCustomerAlreadyExists.WrapMessage("customer id already assigned")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required customer information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create customer")
	}

	customer.CreatedAt = customerM.CreatedAt
	customer.UpdatedAt = customerM.UpdatedAt

	return nil
}

// FindByID retrieves a customer by its unique id.
func (repo *customerRepository) FindByID(ctx context.Context, customerID string) (*entity.Customer, error) {
	var customerM model.CustomerModel

	if err := repo.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&customerM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCustomerNotFound
		}

		return nil, errors.Wrap(err, "failed to find customer by id")
	}

	return toCustomerDomain(&customerM), nil
}

// FindByMobile retrieves a customer by normalized mobile number.
func (repo *customerRepository) FindByMobile(ctx context.Context, mobile string) (*entity.Customer, error) {
	var customerM model.CustomerModel

	if err := repo.db.WithContext(ctx).
		Where("mobile = ?", entity.NormalizeMobile(mobile)).
		First(&customerM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCustomerNotFound
		}

		return nil, errors.Wrap(err, "failed to find customer by mobile")
	}

	return toCustomerDomain(&customerM), nil
}

// FindAll retrieves every customer record.
func (repo *customerRepository) FindAll(ctx context.Context) ([]*entity.Customer, error) {
	var customerModels []*model.CustomerModel

	if err := repo.db.WithContext(ctx).
		Order("created_at").
		Find(&customerModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list customers")
	}

	return toCustomerDomainSlice(customerModels), nil
}

// FindByStatus retrieves all customers in the given status.
func (repo *customerRepository) FindByStatus(ctx context.Context, status entity.Status) ([]*entity.Customer, error) {
	var customerModels []*model.CustomerModel

	if err := repo.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at").
		Find(&customerModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find customers by status")
	}

	return toCustomerDomainSlice(customerModels), nil
}

// FindDueArrivalChecks retrieves customers whose expected arrival time has
// passed without a confirmed arrival.
func (repo *customerRepository) FindDueArrivalChecks(ctx context.Context, now time.Time) ([]*entity.Customer, error) {
	var customerModels []*model.CustomerModel

	if err := repo.db.WithContext(ctx).
		Where("expected_arrival_time IS NOT NULL AND expected_arrival_time < ?", now).
		Where("arrival_confirmed = ?", false).
		Where("status IN ?", []string{string(entity.StatusOrderConfirmed), string(entity.StatusCalled)}).
		Order("expected_arrival_time").
		Find(&customerModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find due arrival checks")
	}

	return toCustomerDomainSlice(customerModels), nil
}

// Update persists the full customer record.
func (repo *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	customerM := fromCustomerDomain(customer)

	result := repo.db.WithContext(ctx).
		Model(&model.CustomerModel{}).
		Where("customer_id = ?", customer.CustomerID).
		Select("*").
		Omit("customer_id", "created_at").
		Updates(customerM)

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update customer")
	}

	if result.RowsAffected == 0 {
		return repository.ErrCustomerNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toCustomerDomain converts a GORM CustomerModel to a domain Customer entity.
func toCustomerDomain(data *model.CustomerModel) *entity.Customer {
	if data == nil {
		return nil
	}

	return &entity.Customer{
		CustomerID:          data.CustomerID,
		Name:                data.Name,
		Mobile:              data.Mobile,
		Email:               data.Email,
		Status:              entity.Status(data.Status),
		OrderDetails:        data.OrderDetails,
		ExpectedArrivalTime: data.ExpectedArrivalTime,
		ArrivalConfirmed:    data.ArrivalConfirmed,
		LastCallTime:        data.LastCallTime,
		AdminToken:          data.AdminToken,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}

func toCustomerDomainSlice(data []*model.CustomerModel) []*entity.Customer {
	customers := make([]*entity.Customer, 0, len(data))
	for _, customerM := range data {
		customers = append(customers, toCustomerDomain(customerM))
	}

	return customers
}

// fromCustomerDomain converts a domain Customer entity to a GORM CustomerModel.
func fromCustomerDomain(data *entity.Customer) *model.CustomerModel {
	if data == nil {
		return nil
	}

	return &model.CustomerModel{
		CustomerID:          data.CustomerID,
		Name:                data.Name,
		Mobile:              data.Mobile,
		Email:               data.Email,
		Status:              string(data.Status),
		OrderDetails:        data.OrderDetails,
		ExpectedArrivalTime: data.ExpectedArrivalTime,
		ArrivalConfirmed:    data.ArrivalConfirmed,
		LastCallTime:        data.LastCallTime,
		AdminToken:          data.AdminToken,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}
