package customer

import (
	"encoding/json"
	"handyman_bids/internal/lib/errors"
	"handyman_bids/internal/models/customer"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type CustomerSaver interface {
	SaveCustomer(req customer.CustomerRequest) (customer.Customer, error)
}

type CustomersReader interface {
	ReadCustomers() ([]customer.Customer, error)
}

func NewPostCustomer(log *slog.Logger, customerSaver CustomerSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req customer.CustomerRequest

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		err := decoder.Decode(&req)
		if err != nil {
			log.Error("Error decoding request body")
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Error decoding request body"))
			return
		}

		err = validate.Struct(req)
		if err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The customer name is required"))
			return
		}

		resp, err := customerSaver.SaveCustomer(req)
		if err != nil {
			log.Error("Failed to save customer", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewGetCustomers(log *slog.Logger, customersReader CustomersReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := customersReader.ReadCustomers()
		if err != nil {
			log.Error("Failed to read customers", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, resp)
	}
}
