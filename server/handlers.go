package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/branched-services/go-nftptr"
	"github.com/branched-services/go-nftptr/event"
)

// Errors returned to clients.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("instance not registered")
)

// Response is the envelope of every reply.
type Response struct {
	Body  interface{} `json:"body,omitempty"`
	Error string      `json:"error,omitempty"`
}

// InstanceRequest is the body of POST /instances.
type InstanceRequest struct {
	ID   event.Word `json:"id"`
	PC   event.Word `json:"pc"`
	Type string     `json:"type"`
}

// TransferRequest is the body of POST /transfers.
type TransferRequest struct {
	Owner    event.Word `json:"owner"`
	Previous event.Word `json:"previous"`
	Value    event.Word `json:"value"`
	PC       event.Word `json:"pc"`
	Type     string     `json:"type"`
}

// Instance describes a registered owner contract.
type Instance struct {
	ID       event.Word     `json:"id"`
	Contract common.Address `json:"contract"`
	Name     string         `json:"name,omitempty"`
	Tx       *common.Hash   `json:"tx,omitempty"`
}

func newInstance(id uint64, c *nftptr.Contract) *Instance {
	inst := &Instance{ID: event.Word(id), Contract: c.Address(), Name: c.Name()}
	if h := c.TxHash(); h != (common.Hash{}) {
		inst.Tx = &h
	}
	return inst
}

func (s *Server) accountHandler(w http.ResponseWriter, r *http.Request) {
	s.reply(w, r, http.StatusOK, map[string]common.Address{"account": s.d.Account()}, nil)
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req InstanceRequest
	if err := decode(r, &req); err != nil {
		s.reply(w, r, http.StatusBadRequest, nil, err)
		return
	}
	c, err := s.d.RegisterInstance(r.Context(), uint64(req.ID), uint64(req.PC), req.Type)
	if err != nil {
		s.reply(w, r, statusOf(err), nil, err)
		return
	}
	s.reply(w, r, http.StatusCreated, newInstance(uint64(req.ID), c), nil)
}

func (s *Server) instanceHandler(w http.ResponseWriter, r *http.Request) {
	id, err := event.ParseWord(mux.Vars(r)["id"])
	if err != nil {
		s.reply(w, r, http.StatusBadRequest, nil, err)
		return
	}
	c, ok := s.d.Instance(uint64(id))
	if !ok {
		s.reply(w, r, http.StatusNotFound, nil, ErrNotFound)
		return
	}
	s.reply(w, r, http.StatusOK, newInstance(uint64(id), c), nil)
}

func (s *Server) unregisterHandler(w http.ResponseWriter, r *http.Request) {
	id, err := event.ParseWord(mux.Vars(r)["id"])
	if err != nil {
		s.reply(w, r, http.StatusBadRequest, nil, err)
		return
	}
	s.d.UnregisterInstance(uint64(id))
	s.reply(w, r, http.StatusOK, map[string]event.Word{"id": id}, nil)
}

func (s *Server) transferHandler(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := decode(r, &req); err != nil {
		s.reply(w, r, http.StatusBadRequest, nil, err)
		return
	}
	hash, err := s.d.MoveToken(r.Context(), uint64(req.Owner), uint64(req.Previous), uint64(req.Value), uint64(req.PC), req.Type)
	if err != nil {
		s.reply(w, r, statusOf(err), nil, err)
		return
	}
	s.reply(w, r, http.StatusOK, map[string]common.Hash{"tx": hash}, nil)
}

func (s *Server) eventHandler(w http.ResponseWriter, r *http.Request) {
	var ev event.Event
	if err := decode(r, &ev); err != nil {
		s.reply(w, r, http.StatusBadRequest, nil, err)
		return
	}
	res, err := s.d.Apply(r.Context(), &ev)
	if err != nil {
		s.reply(w, r, statusOf(err), nil, err)
		return
	}
	s.reply(w, r, http.StatusOK, res, nil)
}

// decode reads a JSON body, rejecting unknown fields.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

// statusOf maps a session error to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, event.ErrUnknownKind):
		return http.StatusBadRequest
	case errors.Is(err, nftptr.ErrNotInitialized):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) reply(w http.ResponseWriter, r *http.Request, status int, body interface{}, err error) {
	res := Response{Body: body}
	if err != nil {
		res.Error = err.Error()
		s.log.Warn("Request failed", "method", r.Method, "uri", r.RequestURI, "from", r.RemoteAddr, "status", status, "err", err)
	} else {
		s.log.Debug("Request served", "method", r.Method, "uri", r.RequestURI, "from", r.RemoteAddr, "status", status)
	}

	w.Header().Set("Content-Type", "application/json;charset=utf8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&res)
}
