package bid

import (
	"encoding/json"
	serrors "errors"
	"fmt"
	"handyman_bids/internal/lib/errors"
	"handyman_bids/internal/models/bid"
	"handyman_bids/internal/pricing"
	"handyman_bids/internal/quote"
	"handyman_bids/internal/storage/postgres"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BidSaver interface {
	SaveBid(req bid.BidRequest, totals pricing.Totals) (bid.BidRecord, error)
}

type BidsReader interface {
	ReadBids(status string) ([]bid.BidListing, error)
}

type BidReader interface {
	ReadBid(bidId int64) (bid.BidRecord, error)
}

type BidStatusUpdater interface {
	UpdateBidStatus(bidId int64, status string) (bid.BidListing, error)
}

func NewPostBid(log *slog.Logger, bidSaver BidSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bid.BidRequest

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		err := decoder.Decode(&req)
		if err != nil {
			log.Error("Error decoding request body")
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Error decoding request body"))
			return
		}

		err = validateBidRequest(req)
		if err != nil {
			log.Error(err.Error())
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		totals := pricing.Calculate(req.Items, req.MarkupPct, req.TaxPct)

		resp, err := bidSaver.SaveBid(req, totals)
		if err != nil {
			switch {
			case serrors.Is(err, postgres.ErrCustomerNotFound):
				render.Status(r, 404)
			case serrors.Is(err, postgres.ErrBadRequest):
				render.Status(r, 400)
			default:
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewGetBids(log *slog.Logger, bidsReader BidsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status != "" && !bid.IsValidStatus(status) {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The status is wrong"))
			return
		}

		resp, err := bidsReader.ReadBids(status)
		if err != nil {
			log.Error("Failed to read bids", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewPutBidStatus(log *slog.Logger, bidStatusUpdater BidStatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bidId, err := strconv.ParseInt(chi.URLParam(r, "bidId"), 10, 64)
		if err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The bid id is invalid"))
			return
		}

		status := r.URL.Query().Get("status")
		if !bid.IsValidStatus(status) {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The status is wrong"))
			return
		}

		resp, err := bidStatusUpdater.UpdateBidStatus(bidId, status)
		if err != nil {
			switch {
			case serrors.Is(err, postgres.ErrNotFound):
				render.Status(r, 404)
			default:
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, resp)
	}
}

func NewGetBidQuote(log *slog.Logger, bidReader BidReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bidId, err := strconv.ParseInt(chi.URLParam(r, "bidId"), 10, 64)
		if err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The bid id is invalid"))
			return
		}

		rec, err := bidReader.ReadBid(bidId)
		if err != nil {
			switch {
			case serrors.Is(err, postgres.ErrNotFound):
				render.Status(r, 404)
			default:
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		// Items and rates are save-time snapshots, so recomputing the
		// breakdown reproduces the stored totals exactly.
		pdfBytes, err := quote.Build(quote.Document{
			QuoteRef:     quote.NewRef(),
			CustomerName: rec.CustomerName,
			ProjectName:  rec.ProjectName,
			Date:         rec.DateCreated,
			Items:        rec.Items,
			Totals:       pricing.Calculate(rec.Items, rec.MarkupPct, rec.TaxPct),
		})
		if err != nil {
			log.Error("Failed to render quote", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError("Failed to render quote"))
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", quote.FileName(rec.CustomerName, rec.ProjectName)))
		w.Write(pdfBytes)
	}
}

func NewGetBidEmailLink(log *slog.Logger, bidReader BidReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bidId, err := strconv.ParseInt(chi.URLParam(r, "bidId"), 10, 64)
		if err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("The bid id is invalid"))
			return
		}

		rec, err := bidReader.ReadBid(bidId)
		if err != nil {
			switch {
			case serrors.Is(err, postgres.ErrNotFound):
				render.Status(r, 404)
			default:
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, bid.EmailLinkResponse{
			Link: quote.MailtoLink(rec.CustomerEmail, rec.CustomerName, rec.ProjectName, rec.Total),
		})
	}
}

func validateBidRequest(req bid.BidRequest) error {
	if req.CustomerId == 0 || req.ProjectName == "" {
		return fmt.Errorf("invalid bid request body")
	}
	if req.MarkupPct < 0 || req.TaxPct < 0 {
		return fmt.Errorf("invalid bid request body")
	}
	for _, it := range req.Items {
		if it.MaterialCost < 0 || it.LaborHours < 0 || it.HourlyRate < 0 {
			return fmt.Errorf("invalid bid request body")
		}
	}
	return nil
}
