package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/duskline/robin-smesh/internal/agent"
	"github.com/duskline/robin-smesh/internal/field"
	"github.com/duskline/robin-smesh/internal/signal"
	"github.com/duskline/robin-smesh/pkg/models"
)

// BlockchainConfig configures the on-chain lookup sources.
type BlockchainConfig struct {
	EtherscanAPIKey  string
	Timeout          time.Duration
	MinTxForPatterns int
}

// DefaultBlockchainConfig takes the Etherscan key from its caller;
// Bitcoin lookups use the keyless Blockstream API.
func DefaultBlockchainConfig(etherscanAPIKey string) BlockchainConfig {
	return BlockchainConfig{
		EtherscanAPIKey:  etherscanAPIKey,
		Timeout:          30 * time.Second,
		MinTxForPatterns: 3,
	}
}

// BlockchainAnalyst resolves Bitcoin and Ethereum addresses extracted from
// scraped content into wallet activity summaries: transaction counts,
// balances, and temporal/risk patterns. Monero addresses are excluded —
// the chain has no public ledger to query.
type BlockchainAnalyst struct {
	cfg    agent.Config
	bconf  BlockchainConfig
	client *http.Client
	done   map[string]struct{}
}

// NewBlockchainAnalyst constructs a BlockchainAnalyst.
func NewBlockchainAnalyst(cfg agent.Config, bconf BlockchainConfig) *BlockchainAnalyst {
	return &BlockchainAnalyst{
		cfg:    cfg,
		bconf:  bconf,
		client: &http.Client{Timeout: bconf.Timeout},
		done:   make(map[string]struct{}),
	}
}

func (b *BlockchainAnalyst) ID() string        { return b.cfg.ID }
func (b *BlockchainAnalyst) AgentType() string { return string(models.AgentBlockchain) }

// detectChain classifies an artifact as a bitcoin or ethereum address, or
// returns "" if it isn't a chain this analyst can query.
func detectChain(a models.Artifact) string {
	switch a.Type {
	case models.ArtifactBitcoin:
		return "bitcoin"
	case models.ArtifactEthereum:
		return "ethereum"
	default:
		return ""
	}
}

// Sense returns the origin hashes of ExtractedArtifacts signals containing
// at least one chain-queryable address not yet analyzed.
func (b *BlockchainAnalyst) Sense(f *field.Field) []string {
	var hashes []string
	for _, s := range f.SenseWhere(matchesPayload[signal.ExtractedArtifacts]) {
		ea := s.Payload.(signal.ExtractedArtifacts)
		for _, a := range ea.Artifacts {
			chain := detectChain(a)
			if chain == "" {
				continue
			}
			if _, seen := b.done[chain+":"+a.Value]; seen {
				continue
			}
			hashes = append(hashes, s.OriginHash)
			break
		}
	}
	return hashes
}

func (b *BlockchainAnalyst) Process(ctx context.Context, f *field.Field) ([]string, error) {
	targets := b.Sense(f)
	if len(targets) == 0 {
		return nil, agent.ErrNoWork
	}

	sig, ok := f.Get(targets[0])
	if !ok {
		return nil, agent.ErrNoWork
	}
	ea, ok := sig.Payload.(signal.ExtractedArtifacts)
	if !ok {
		return nil, agent.ErrNoWork
	}

	var emitted []string
	for _, a := range ea.Artifacts {
		chain := detectChain(a)
		if chain == "" {
			continue
		}
		key := chain + ":" + a.Value
		if _, seen := b.done[key]; seen {
			continue
		}
		b.done[key] = struct{}{}

		if chain == "bitcoin" && !isValidBitcoinAddress(a.Value) {
			continue
		}

		var analysis models.WalletAnalysis
		var err error
		switch chain {
		case "bitcoin":
			analysis, err = b.analyzeBitcoin(ctx, a.Value)
		case "ethereum":
			analysis, err = b.analyzeEthereum(ctx, a.Value)
		}
		if err != nil {
			continue
		}

		out := signal.NewBuilder(signal.BlockchainAnalysis{
			Address:  a.Value,
			Chain:    chain,
			Analysis: analysis,
		}).Origin(b.cfg.ID).Confidence(0.8).TTL(120).Build()
		emitted = append(emitted, f.Emit(out))
	}

	if len(emitted) == 0 {
		return nil, agent.ErrNoWork
	}
	return emitted, nil
}

// isValidBitcoinAddress validates a candidate address's checksum/format
// against mainnet rules.
func isValidBitcoinAddress(address string) bool {
	_, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams)
	return err == nil
}

type blockstreamAddressInfo struct {
	ChainStats struct {
		FundedTxoCount int64 `json:"funded_txo_count"`
		SpentTxoCount  int64 `json:"spent_txo_count"`
		FundedTxoSum   int64 `json:"funded_txo_sum"`
		SpentTxoSum    int64 `json:"spent_txo_sum"`
		TxCount        int64 `json:"tx_count"`
	} `json:"chain_stats"`
}

type blockstreamTx struct {
	Status struct {
		BlockTime int64 `json:"block_time"`
	} `json:"status"`
}

func (b *BlockchainAnalyst) analyzeBitcoin(ctx context.Context, address string) (models.WalletAnalysis, error) {
	var info blockstreamAddressInfo
	if err := b.getJSON(ctx, "https://blockstream.info/api/address/"+address, &info); err != nil {
		return models.WalletAnalysis{}, err
	}

	var txs []blockstreamTx
	if err := b.getJSON(ctx, "https://blockstream.info/api/address/"+address+"/txs", &txs); err != nil {
		return models.WalletAnalysis{}, err
	}

	analysis := models.WalletAnalysis{
		TxCount:       uint32(info.ChainStats.TxCount),
		TotalReceived: uint64(info.ChainStats.FundedTxoSum),
		TotalSent:     uint64(info.ChainStats.SpentTxoSum),
		Balance:       uint64(info.ChainStats.FundedTxoSum - info.ChainStats.SpentTxoSum),
	}

	var timestamps []int64
	for _, tx := range txs {
		if tx.Status.BlockTime > 0 {
			timestamps = append(timestamps, tx.Status.BlockTime)
		}
	}
	if len(timestamps) > 0 {
		first, last := timestamps[0], timestamps[0]
		for _, t := range timestamps {
			if t < first {
				first = t
			}
			if t > last {
				last = t
			}
		}
		analysis.FirstSeen = &first
		analysis.LastSeen = &last
	}

	analysis.Patterns = detectTemporalPatterns(timestamps, b.bconf.MinTxForPatterns)
	analysis.RiskIndicators = detectRiskIndicators(analysis)

	return analysis, nil
}

type etherscanTxListResponse struct {
	Result []struct {
		TimeStamp string `json:"timeStamp"`
		Value     string `json:"value"`
		From      string `json:"from"`
		To        string `json:"to"`
	} `json:"result"`
}

func (b *BlockchainAnalyst) analyzeEthereum(ctx context.Context, address string) (models.WalletAnalysis, error) {
	if b.bconf.EtherscanAPIKey == "" {
		return models.WalletAnalysis{}, agent.NotReady("no etherscan api key configured")
	}

	endpoint := fmt.Sprintf(
		"https://api.etherscan.io/api?module=account&action=txlist&address=%s&sort=asc&apikey=%s",
		address, b.bconf.EtherscanAPIKey,
	)
	var parsed etherscanTxListResponse
	if err := b.getJSON(ctx, endpoint, &parsed); err != nil {
		return models.WalletAnalysis{}, err
	}

	analysis := models.WalletAnalysis{TxCount: uint32(len(parsed.Result))}

	var timestamps []int64
	var received, sent uint64
	for _, tx := range parsed.Result {
		var ts int64
		fmt.Sscanf(tx.TimeStamp, "%d", &ts)
		if ts > 0 {
			timestamps = append(timestamps, ts)
		}
		var wei uint64
		fmt.Sscanf(tx.Value, "%d", &wei)
		if strings.EqualFold(tx.To, address) {
			received += wei
		}
		if strings.EqualFold(tx.From, address) {
			sent += wei
		}
	}
	analysis.TotalReceived = received
	analysis.TotalSent = sent
	if sent <= received {
		analysis.Balance = received - sent
	}

	if len(timestamps) > 0 {
		first, last := timestamps[0], timestamps[len(timestamps)-1]
		analysis.FirstSeen = &first
		analysis.LastSeen = &last
	}

	analysis.Patterns = detectTemporalPatterns(timestamps, b.bconf.MinTxForPatterns)
	analysis.Patterns = append(analysis.Patterns, detectTimezonePattern(timestamps, b.bconf.MinTxForPatterns)...)
	analysis.RiskIndicators = detectRiskIndicators(analysis)

	return analysis, nil
}

func (b *BlockchainAnalyst) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return agent.Network(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return agent.Network(fmt.Sprintf("status %d from %s", resp.StatusCode, url))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return agent.Parse(err.Error())
	}
	return nil
}

// detectTemporalPatterns flags regular-interval, burst, and dormant-then-
// active timing patterns across a set of Unix-second transaction
// timestamps. Fewer than minTx transactions produces no signal — there
// isn't enough history to distinguish a pattern from noise. Timestamps are
// sorted ascending first since neither Blockstream's nor Etherscan's wire
// order is guaranteed to already be chronological.
func detectTemporalPatterns(timestamps []int64, minTx int) []models.TemporalPattern {
	if len(timestamps) < minTx {
		return nil
	}
	ts := sortedCopy(timestamps)

	var patterns []models.TemporalPattern

	intervals := make([]int64, 0, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		intervals = append(intervals, ts[i]-ts[i-1])
	}

	if len(intervals) > 0 {
		avgInterval := sumInt64(intervals) / int64(len(intervals))
		stddev := intervalStdDev(intervals, avgInterval)

		// Low variance relative to the mean gap means automation.
		if avgInterval > 0 && stddev < float64(avgInterval)*0.3 {
			patterns = append(patterns, models.TemporalPattern{
				PatternType: "regular_interval",
				Description: "Transactions occur at regular intervals",
				Confidence:  1 - math.Min(1, stddev/float64(avgInterval)),
				Evidence: []string{
					fmt.Sprintf("average interval: %d seconds", avgInterval),
					fmt.Sprintf("standard deviation: %.0f seconds", stddev),
				},
			})
		}

		shortIntervals := 0
		for _, v := range intervals {
			if v < 3600 {
				shortIntervals++
			}
		}
		if shortIntervals > len(intervals)/2 {
			patterns = append(patterns, models.TemporalPattern{
				PatternType: "burst_activity",
				Description: "Multiple transactions within short time periods",
				Confidence:  float64(shortIntervals) / float64(len(intervals)),
				Evidence:    []string{fmt.Sprintf("%d of %d transactions within 1 hour of each other", shortIntervals, len(intervals))},
			})
		}
	}

	lifespan := ts[len(ts)-1] - ts[0]
	if lifespan > 86400*30 && len(ts) >= 2 {
		maxGap := maxInt64(intervals)
		if maxGap > lifespan/2 {
			patterns = append(patterns, models.TemporalPattern{
				PatternType: "dormant_then_active",
				Description: fmt.Sprintf("Long dormancy period of %d days followed by resumed activity", maxGap/86400),
				Confidence:  float64(maxGap) / float64(lifespan),
				Evidence: []string{
					fmt.Sprintf("maximum gap: %d days", maxGap/86400),
					fmt.Sprintf("total wallet age: %d days", lifespan/86400),
				},
			})
		}
	}

	return patterns
}

// detectTimezonePattern flags a wallet whose transactions cluster tightly
// around one hour of the day — a weak indicator of the operator's
// timezone. Unlike the other temporal patterns this is only meaningful for
// Ethereum, whose Etherscan timestamps are dense enough hour-of-day samples
// to be worth histogramming; Bitcoin analysis never calls this.
func detectTimezonePattern(timestamps []int64, minTx int) []models.TemporalPattern {
	if len(timestamps) < minTx {
		return nil
	}

	var hourCounts [24]int
	hours := make([]int, len(timestamps))
	for i, ts := range timestamps {
		hour := int((ts % 86400) / 3600)
		if hour < 0 {
			hour += 24
		}
		hours[i] = hour
		hourCounts[hour]++
	}

	peakHour := 0
	for h := 1; h < 24; h++ {
		if hourCounts[h] > hourCounts[peakHour] {
			peakHour = h
		}
	}

	inPeakRange := 0
	for _, h := range hours {
		if circularHourDistance(h, peakHour) <= 4 {
			inPeakRange++
		}
	}

	if inPeakRange > len(hours)*2/3 {
		return []models.TemporalPattern{{
			PatternType: "timezone_indicator",
			Description: fmt.Sprintf("Activity concentrated around %d:00 UTC (possible operator timezone)", peakHour),
			Confidence:  float64(inPeakRange) / float64(len(hours)),
			Evidence: []string{
				fmt.Sprintf("peak activity hour: %d:00 UTC", peakHour),
				fmt.Sprintf("%d%% of transactions within ±4 hours of peak", inPeakRange*100/len(hours)),
			},
		}}
	}
	return nil
}

func circularHourDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > 12 {
		d = 24 - d
	}
	return d
}

func sortedCopy(timestamps []int64) []int64 {
	out := make([]int64, len(timestamps))
	copy(out, timestamps)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sumInt64(vs []int64) int64 {
	var sum int64
	for _, v := range vs {
		sum += v
	}
	return sum
}

func maxInt64(vs []int64) int64 {
	var max int64
	for _, v := range vs {
		if v > max {
			max = v
		}
	}
	return max
}

func intervalStdDev(intervals []int64, mean int64) float64 {
	var variance float64
	for _, v := range intervals {
		d := float64(v - mean)
		variance += d * d
	}
	variance /= float64(len(intervals))
	return math.Sqrt(variance)
}

// detectRiskIndicators flags coarse risk heuristics on the wallet summary:
// more than 100 transactions, a zero remaining balance after more than 10
// transactions (consistent with a pass-through mixer hop rather than a
// holding wallet), and more than 10 transactions per day of lifespan.
func detectRiskIndicators(a models.WalletAnalysis) []string {
	var indicators []string
	if a.TxCount > 100 {
		indicators = append(indicators, "high transaction volume")
	}
	if a.Balance == 0 && a.TxCount > 10 {
		indicators = append(indicators, "fully swept balance despite transaction history")
	}
	if a.FirstSeen != nil && a.LastSeen != nil {
		spanDays := float64(*a.LastSeen-*a.FirstSeen) / 86400
		if spanDays > 0 && float64(a.TxCount)/spanDays > 10 {
			indicators = append(indicators, "unusually high transaction velocity")
		}
	}
	return indicators
}

func (b *BlockchainAnalyst) Heartbeat(f *field.Field) {
	emitHeartbeat(f, b.cfg.ID, models.AgentBlockchain, 1.0, 10)
}
