package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clearrail/rtr-clearing/config"
	"github.com/clearrail/rtr-clearing/internal/agent"
	"github.com/clearrail/rtr-clearing/internal/directory"
	"github.com/clearrail/rtr-clearing/internal/events/kafka"
	"github.com/clearrail/rtr-clearing/internal/exchange"
	"github.com/clearrail/rtr-clearing/internal/interfaces"
	"github.com/clearrail/rtr-clearing/internal/ledger"
	"github.com/clearrail/rtr-clearing/internal/models"
	"github.com/clearrail/rtr-clearing/internal/notifier"
	"github.com/clearrail/rtr-clearing/internal/storage/memory"
	"github.com/clearrail/rtr-clearing/internal/storage/postgres"
)

const ackInboxCapacity = 128

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	flag.Parse()

	cfg, err := config.Get(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var store interfaces.LedgerStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("open postgres", zap.Error(err))
		}
		defer db.Close()
		store = postgres.NewStore(db)
	} else {
		store = memory.NewStore()
	}

	dir := directory.New()
	intakes := make(map[string]interfaces.ReceiverIntake, len(cfg.Participants))
	sinks := make(map[string]interfaces.NotificationSink, len(cfg.Participants))
	debtors := make(map[string]*agent.DebtorAgent, len(cfg.Participants))

	ctx := context.Background()
	for _, p := range cfg.Participants {
		participant := models.Participant{BIC: p.BIC, Name: p.Name, AccountNumber: p.AccountNumber}
		if err := dir.Register(participant); err != nil {
			logger.Fatal("register participant", zap.Error(err))
		}

		account := models.Account{ParticipantID: p.BIC, Number: p.AccountNumber, Balance: p.OpeningBalance}
		if err := store.CreateAccount(ctx, account); err != nil {
			// an already-provisioned durable store is fine
			logger.Warn("account not created", zap.String("participant", p.BIC), zap.Error(err))
		}

		creditorAgent := agent.NewCreditorAgent(p.BIC, nil, logger)
		creditorAgent.Start()
		defer creditorAgent.Stop()
		intakes[p.BIC] = creditorAgent

		inbox := agent.NewNotificationInbox(p.BIC, ackInboxCapacity)
		sinks[p.BIC] = inbox
		go drainAcks(logger, inbox)

		debtors[p.BIC] = agent.NewDebtorAgent(p.BIC)
	}

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers, "settlement_completed")
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	ledgerService := ledger.NewLedger(store, logger)
	notifierService := notifier.New(sinks, publisher, logger)
	router := exchange.NewRouter(dir)
	forwarder := exchange.NewForwarder(intakes, cfg.ForwardTimeout, logger)
	processor := exchange.NewProcessor(router, forwarder, ledgerService, notifierService, logger)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	http.HandleFunc("/payments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			Debtor        string `json:"debtor"`
			Creditor      string `json:"creditor"`
			Amount        string `json:"amount"`
			CorrelationID string `json:"correlation_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		var instruction models.PaymentInstruction
		if originator, ok := debtors[req.Debtor]; ok {
			instruction = originator.Issue(req.Creditor, req.Amount, req.CorrelationID)
		} else {
			// unknown debtors still enter the pipeline; the router
			// reports them in the outcome
			instruction = agent.NewDebtorAgent(req.Debtor).Issue(req.Creditor, req.Amount, req.CorrelationID)
		}

		outcome := processor.Submit(r.Context(), instruction)

		w.Header().Set("Content-Type", "application/json")
		if outcome.Status == models.StatusSettled {
			w.WriteHeader(http.StatusCreated)
		} else {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		json.NewEncoder(w).Encode(outcome)
	})

	http.HandleFunc("/accounts/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		participantID := r.URL.Query().Get("participant_id")
		if participantID == "" {
			http.Error(w, "participant_id is a mandatory field", http.StatusBadRequest)
			return
		}

		balance, err := ledgerService.Balance(r.Context(), participantID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		response := struct {
			ParticipantID string          `json:"participant_id"`
			Balance       decimal.Decimal `json:"balance"`
		}{
			ParticipantID: participantID,
			Balance:       balance,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	})

	http.HandleFunc("/ledger/entries", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var entries []models.LedgerEntry
		var err error
		if participantID := r.URL.Query().Get("participant_id"); participantID != "" {
			entries, err = ledgerService.EntriesByAccount(r.Context(), participantID)
		} else {
			entries, err = ledgerService.Entries(r.Context())
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})

	logger.Info("starting exchange", zap.String("addr", cfg.ListenAddr))
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, nil))
}

func drainAcks(logger *zap.Logger, inbox *agent.NotificationInbox) {
	for ack := range inbox.Acks() {
		logger.Info("settlement ack",
			zap.String("participant", ack.ParticipantID),
			zap.String("instruction", ack.InstructionID),
			zap.String("outcome", string(ack.Outcome)),
			zap.String("amount", ack.Amount.String()))
	}
}
