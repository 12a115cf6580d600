package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dekarrin/boolpred"
	"github.com/dekarrin/boolpred/server/dao"
	"github.com/dekarrin/boolpred/server/middle"
)

// v must be a pointer to a type.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")

	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}

	if err := json.Unmarshal(bodyData, v); err != nil {
		return fmt.Errorf("malformed JSON in request")
	}

	return nil
}

func (s *Server) handlePostPublisher(w http.ResponseWriter, req *http.Request) {
	var reqData PublisherCreateRequest
	if err := parseJSON(req, &reqData); err != nil {
		jsonBadRequest(err.Error()).writeResponse(w, req)
		return
	}

	if reqData.Name == "" || reqData.APIKey == "" {
		jsonBadRequest("name and api_key are required").writeResponse(w, req)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reqData.APIKey), bcrypt.DefaultCost)
	if err != nil {
		jsonInternalServerError("could not hash api key: %s", err).writeResponse(w, req)
		return
	}

	pub, err := s.db.Publishers().Create(req.Context(), dao.Publisher{Name: reqData.Name, APIKeyHash: string(hash)})
	if err != nil {
		if err == dao.ErrConstraintViolation {
			jsonConflict("a publisher with that name already exists").writeResponse(w, req)
			return
		}
		jsonInternalServerError("could not create publisher: %s", err).writeResponse(w, req)
		return
	}

	jsonCreated(publisherModel(pub), "publisher '%s' created", pub.Name).writeResponse(w, req)
}

func (s *Server) handlePostLogin(w http.ResponseWriter, req *http.Request) {
	var reqData LoginRequest
	if err := parseJSON(req, &reqData); err != nil {
		jsonBadRequest(err.Error()).writeResponse(w, req)
		return
	}

	pub, err := s.db.Publishers().GetByName(req.Context(), reqData.Name)
	if err != nil {
		time.Sleep(s.cfg.UnauthDelay())
		jsonUnauthorized("incorrect publisher name or API key").writeResponse(w, req)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(pub.APIKeyHash), []byte(reqData.APIKey)); err != nil {
		time.Sleep(s.cfg.UnauthDelay())
		jsonUnauthorized("incorrect publisher name or API key").writeResponse(w, req)
		return
	}

	tok, err := middle.GenerateToken(s.cfg.TokenSecret, pub, 24*time.Hour)
	if err != nil {
		jsonInternalServerError("could not generate token: %s", err).writeResponse(w, req)
		return
	}

	jsonCreated(LoginResponse{Token: tok, PublisherID: pub.ID.String()}, "publisher '%s' logged in", pub.Name).writeResponse(w, req)
}

func (s *Server) handlePostSubscription(w http.ResponseWriter, req *http.Request) {
	pub, _ := middle.Publisher(req.Context())

	var reqData SubscriptionCreateRequest
	if err := parseJSON(req, &reqData); err != nil {
		jsonBadRequest(err.Error()).writeResponse(w, req)
		return
	}

	pred := boolpred.New(reqData.Source)
	if !pred.IsValid() {
		jsonBadRequest("predicate source is invalid", "invalid predicate from publisher '%s'", pub.Name).writeResponse(w, req)
		return
	}

	sub, err := s.db.Subscriptions().Create(req.Context(), dao.Subscription{Owner: pub.ID, Source: reqData.Source})
	if err != nil {
		jsonInternalServerError("could not create subscription: %s", err).writeResponse(w, req)
		return
	}

	if err := s.subs.rebuild(req.Context()); err != nil {
		jsonInternalServerError("subscription stored but decision tree rebuild failed: %s", err).writeResponse(w, req)
		return
	}

	jsonCreated(subscriptionModel(sub), "publisher '%s' created subscription %s", pub.Name, sub.ID).writeResponse(w, req)
}

func (s *Server) handleGetSubscriptions(w http.ResponseWriter, req *http.Request) {
	pub, _ := middle.Publisher(req.Context())

	subs, err := s.db.Subscriptions().GetAllByOwner(req.Context(), pub.ID)
	if err != nil {
		jsonInternalServerError("could not list subscriptions: %s", err).writeResponse(w, req)
		return
	}

	models := make([]SubscriptionModel, len(subs))
	for i, sub := range subs {
		models[i] = subscriptionModel(sub)
	}

	jsonOK(models).writeResponse(w, req)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, req *http.Request) {
	pub, _ := middle.Publisher(req.Context())

	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		jsonNotFound().writeResponse(w, req)
		return
	}

	sub, err := s.db.Subscriptions().GetByID(req.Context(), id)
	if err != nil {
		jsonNotFound().writeResponse(w, req)
		return
	}

	if sub.Owner != pub.ID {
		jsonForbidden("publisher '%s' attempted to delete subscription owned by another publisher", pub.Name).writeResponse(w, req)
		return
	}

	if _, err := s.db.Subscriptions().Delete(req.Context(), id); err != nil {
		jsonInternalServerError("could not delete subscription: %s", err).writeResponse(w, req)
		return
	}

	if err := s.subs.rebuild(req.Context()); err != nil {
		jsonInternalServerError("subscription deleted but decision tree rebuild failed: %s", err).writeResponse(w, req)
		return
	}

	jsonNoContent("publisher '%s' deleted subscription %s", pub.Name, id).writeResponse(w, req)
}

func (s *Server) handlePostEvent(w http.ResponseWriter, req *http.Request) {
	var reqData EventRequest
	if err := parseJSON(req, &reqData); err != nil {
		jsonBadRequest(err.Error()).writeResponse(w, req)
		return
	}

	ids := s.subs.match(reqData.Fields)
	matched := make([]string, len(ids))
	for i, id := range ids {
		matched[i] = id.String()
	}

	jsonOK(EventResponse{Matched: matched}, "event matched %d subscription(s)", len(matched)).writeResponse(w, req)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, req *http.Request) {
	pubs, err := s.db.Publishers().GetAll(req.Context())
	if err != nil {
		jsonInternalServerError("could not count publishers: %s", err).writeResponse(w, req)
		return
	}

	resp := StatusResponse{
		Subscriptions: s.subs.memberCount(),
		Publishers:    len(pubs),
		Uptime:        humanize.Time(s.start),
		LastCompiled:  humanize.Time(s.subs.lastCompiled()),
	}
	if req.URL.Query().Get("verbose") != "" {
		resp.Tree = s.subs.description()
	}

	jsonOK(resp).writeResponse(w, req)
}

func publisherModel(pub dao.Publisher) PublisherModel {
	return PublisherModel{
		URI:     "/publishers/" + pub.ID.String(),
		ID:      pub.ID.String(),
		Name:    pub.Name,
		Created: pub.Created.Format(time.RFC3339),
	}
}

func subscriptionModel(sub dao.Subscription) SubscriptionModel {
	return SubscriptionModel{
		URI:     "/subscriptions/" + sub.ID.String(),
		ID:      sub.ID.String(),
		Owner:   sub.Owner.String(),
		Source:  sub.Source,
		Created: sub.Created.Format(time.RFC3339),
	}
}
