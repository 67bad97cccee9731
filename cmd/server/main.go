//
// Tencent is pleased to support the open source community by making deepresearch available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// deepresearch is licensed under the Apache License Version 2.0.
//
//

// Command server exposes the research orchestrator over HTTP. This is a
// demo transport living outside the core package: the orchestrator itself
// stays transport-agnostic.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	coremodel "deepresearch/core/model"
	"deepresearch/log"
	"deepresearch/model/openai"
	"deepresearch/research"
	"deepresearch/search"
)

type researchRequest struct {
	Query string `json:"query"`
}

type researchResponse struct {
	Success       bool                `json:"success"`
	Error         string              `json:"error,omitempty"`
	Details       string              `json:"details,omitempty"`
	ResearchBrief string              `json:"research_brief,omitempty"`
	FinalReport   string              `json:"final_report,omitempty"`
	Notes         []string            `json:"notes,omitempty"`
	TokenUsage    coremodel.Usage     `json:"token_usage"`
	InvocationID  string              `json:"invocation_id"`
}

type server struct {
	orchestrator *research.Orchestrator
}

func (s *server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result := s.orchestrator.ConductDeepResearch(r.Context(), req.Query)

	w.Header().Set("Content-Type", "application/json")
	if !result.Success {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(researchResponse{
		Success:       result.Success,
		Error:         result.Error,
		Details:       result.Details,
		ResearchBrief: result.ResearchBrief,
		FinalReport:   result.FinalReport,
		Notes:         result.Notes,
		TokenUsage:    result.TokenUsage,
		InvocationID:  result.InvocationID,
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	creds := research.CredentialsFromEnv()
	lm := openai.New(openai.WithAPIKey(creds.OpenAIAPIKey))

	aggregator, err := search.NewAggregator([]search.Adapter{
		search.NewDuckDuckGoAdapter(),
		search.NewContext7Adapter(),
	}, 4)
	if err != nil {
		log.Fatalf("server: build aggregator: %v", err)
	}

	orchestrator, err := research.NewOrchestrator(lm, aggregator, research.DefaultConfig())
	if err != nil {
		log.Fatalf("server: build orchestrator: %v", err)
	}

	srv := &server{orchestrator: orchestrator}

	router := mux.NewRouter()
	router.HandleFunc("/research", srv.handleResearch).Methods(http.MethodPost)
	router.HandleFunc("/healthz", srv.handleHealth).Methods(http.MethodGet)

	handler := cors.Default().Handler(router)

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	log.Infof("server: listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
