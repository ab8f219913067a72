package tasks

import "github.com/emperorhan/base-score/internal/domain/model"

// Predicate reports whether a task is complete for summary.
type Predicate func(summary model.WalletActivitySummary) (bool, error)

type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Predicate   Predicate `json:"-"`
}

type Category struct {
	ID          int    `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Tasks       []Task `json:"tasks"`
}

func txAtLeast(n int) Predicate {
	return func(s model.WalletActivitySummary) (bool, error) { return s.TxVolume >= n, nil }
}

func nftAtLeast(n int) Predicate {
	return func(s model.WalletActivitySummary) (bool, error) { return s.NFTActivity >= n, nil }
}

func contractsAtLeast(n int) Predicate {
	return func(s model.WalletActivitySummary) (bool, error) { return s.NewContracts >= n, nil }
}

func swapsAtLeast(n int) Predicate {
	return func(s model.WalletActivitySummary) (bool, error) { return s.SwapCount() >= n, nil }
}

func hasName(s model.WalletActivitySummary) (bool, error) {
	return s.HasName(), nil
}

func never(model.WalletActivitySummary) (bool, error) {
	return false, nil
}

func allOf(preds ...Predicate) Predicate {
	return func(s model.WalletActivitySummary) (bool, error) {
		for _, p := range preds {
			ok, err := p(s)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// DefaultCatalog returns the eligibility checklist. Ids are stable and
// leave gaps where tasks were retired (12, 27).
func DefaultCatalog() []Category {
	return []Category{
		{
			ID: 1, Label: "Setup & Bridging", Description: "Get on-chain early", Points: 5,
			Tasks: []Task{
				{ID: 1, Title: "Bridge ETH from Ethereum mainnet to Base", Description: "Use official Base Bridge (bridge.base.org)", Predicate: txAtLeast(1)},
				{ID: 2, Title: "Bridge via alternative protocols", Description: "Across Protocol, Rhino.fi, Orbiter Finance, or Layerswap", Predicate: txAtLeast(3)},
				{ID: 3, Title: "Bridge gETH testnet tokens", Description: "From Goerli to Base Sepolia testnet via official testnet bridge", Predicate: never},
				{ID: 4, Title: "Verify your wallet via Coinbase", Description: "Complete Onchain Verification at coinbase.com/onchain-verified", Predicate: txAtLeast(5)},
				{ID: 5, Title: "Register a .base ENS name", Description: "~$4-$10/year at base.org/names and hold ≥0.001 ETH on Base", Predicate: hasName},
			},
		},
		{
			ID: 2, Label: "Guild Roles & Social", Description: "Unlock Discord access and roles", Points: 6,
			Tasks: []Task{
				{ID: 6, Title: "Become Based", Description: "Visit base.org (optional: follow @base on X)", Predicate: txAtLeast(1)},
				{ID: 7, Title: "Based", Description: "Own a .base name", Predicate: hasName},
				{ID: 8, Title: "Onchain", Description: "Hold ≥0.001 ETH + complete 1 on-chain tx", Predicate: txAtLeast(1)},
				{ID: 9, Title: "Builders & Founders", Description: "GitHub account pre-July 1, 2025 + ≥1 commit + visit base.org/build", Predicate: contractsAtLeast(1)},
				{ID: 10, Title: "Creators & Voices", Description: "Follow @base on X", Predicate: txAtLeast(2)},
				{ID: 11, Title: "Coinbase Onchain Verified", Description: "Verify wallet", Predicate: txAtLeast(8)},
			},
		},
		{
			ID: 3, Label: "NFT Minting", Description: "Boost tx diversity with on-chain art", Points: 8,
			Tasks: []Task{
				{ID: 13, Title: "Mint an Onchain Summer NFT", Description: "Visit onchainsummer.xyz", Predicate: nftAtLeast(1)},
				{ID: 14, Title: "Mint any NFT on Mint.Fun", Description: "Base Day One or !fundrop pass (type '!fundrop' in chat)", Predicate: nftAtLeast(2)},
				{ID: 15, Title: "Mint Base, Introduced NFT", Description: "Commemorative NFT on Zora.co for testnet launch", Predicate: nftAtLeast(3)},
				{ID: 16, Title: "Get Early Builders NFT", Description: "Deploy smart contract on apetimism.com/launch + complete quests", Predicate: allOf(contractsAtLeast(1), nftAtLeast(1))},
				{ID: 17, Title: "Complete Tokiemon Card tasks", Description: "Coinbase Wallet Dashboard (Explore tab; earn 1000 points)", Predicate: nftAtLeast(4)},
				{ID: 18, Title: "Mint Cubs NFTs on Layer3", Description: "Visit layer3.xyz for on-chain scoring", Predicate: nftAtLeast(5)},
				{ID: 19, Title: "Solve Clusters puzzles", Description: "Visit clusters.xyz and mint related NFTs", Predicate: nftAtLeast(6)},
				{ID: 20, Title: "Purchase Onchain Summer NFTs", Description: "From secondary markets (Zora or OpenSea on Base)", Predicate: nftAtLeast(7)},
			},
		},
		{
			ID: 4, Label: "DEX Swaps & Liquidity", Description: "Repeatable for volume", Points: 6,
			Tasks: []Task{
				{ID: 21, Title: "Swap tokens on Uniswap", Description: "Visit app.uniswap.org on Base", Predicate: swapsAtLeast(1)},
				{ID: 22, Title: "Swap on 1inch", Description: "Aggregated DEX at app.1inch.io", Predicate: swapsAtLeast(2)},
				{ID: 23, Title: "Swap/add liquidity on PancakeSwap", Description: "Base deployment at pancakeswap.finance", Predicate: swapsAtLeast(3)},
				{ID: 24, Title: "Swap/add liquidity on SushiSwap", Description: "Visit sushi.com on Base", Predicate: swapsAtLeast(4)},
				{ID: 25, Title: "Swap/add liquidity on Aerodrome", Description: "Top Base DEX at aerodrome.finance", Predicate: swapsAtLeast(5)},
				{ID: 26, Title: "Swap/add liquidity on Alien Base", Description: "Visit alienbase.xyz", Predicate: swapsAtLeast(6)},
			},
		},
		{
			ID: 5, Label: "DeFi & Lending", Description: "Yield-bearing apps for deeper engagement", Points: 7,
			Tasks: []Task{
				{ID: 28, Title: "Provide liquidity on BaseSwap", Description: "Visit baseswap.fi", Predicate: txAtLeast(10)},
				{ID: 29, Title: "Provide liquidity on RocketSwap", Description: "Visit rocketswap.finance", Predicate: txAtLeast(12)},
				{ID: 30, Title: "Lend/borrow on Moonwell", Description: "Visit moonwell.fi on Base", Predicate: txAtLeast(15)},
				{ID: 31, Title: "Stake/farm on Seamless", Description: "Lending protocol at seamlessprotocol.com", Predicate: txAtLeast(18)},
				{ID: 32, Title: "Yield farm on Base", Description: "Official opportunities at base.org/yield", Predicate: txAtLeast(20)},
				{ID: 33, Title: "Use Pendle on Base", Description: "Cross-chain yield aggregator at pendle.finance", Predicate: txAtLeast(25)},
				{ID: 34, Title: "Participate in liquidity mining", Description: "Emerging Base DeFi (check defillama.com/chain/Base)", Predicate: txAtLeast(30)},
			},
		},
		{
			ID: 6, Label: "DApps & Games", Description: "Diversify interactions", Points: 6,
			Tasks: []Task{
				{ID: 35, Title: "Play DackieSwap", Description: "Visit dackieswap.com or other Base games", Predicate: txAtLeast(6)},
				{ID: 36, Title: "Interact with Friend.tech clones", Description: "SocialFi on Base (e.g., Farcaster frames)", Predicate: txAtLeast(8)},
				{ID: 37, Title: "Use Base-native DApps", Description: "From DefiLlama's Base chain page (top protocols by TVL)", Predicate: txAtLeast(10)},
				{ID: 38, Title: "Complete Layer3 quests", Description: "Visit layer3.xyz/campaigns?chain=base", Predicate: txAtLeast(12)},
				{ID: 39, Title: "Complete Bankless Citizen quests", Description: "Visit citizen.bankless.com (10 ecosystem quests)", Predicate: txAtLeast(15)},
				{ID: 40, Title: "Test emerging DApps", Description: "Abstract Chain integrations or Opinion Labs points farming", Predicate: txAtLeast(18)},
			},
		},
		{
			ID: 7, Label: "Development", Description: "For higher-tier rewards", Points: 3,
			Tasks: []Task{
				{ID: 41, Title: "Star Base GitHub repos", Description: "Visit github.com/base-org and make 1 commit", Predicate: contractsAtLeast(1)},
				{ID: 42, Title: "Deploy a smart contract", Description: "Via Remix or Hardhat on Base", Predicate: contractsAtLeast(1)},
				{ID: 43, Title: "Complete builder quests", Description: "Visit base.org/build (e.g., hackathon sign-ups)", Predicate: contractsAtLeast(2)},
			},
		},
		{
			ID: 8, Label: "Daily/Repeatable", Description: "Do these weekly for consistency", Points: 5,
			Tasks: []Task{
				{ID: 44, Title: "Perform 5-10 varied txs", Description: "Mix swaps, mints, bridges", Predicate: txAtLeast(5)},
				{ID: 45, Title: "Engage in Base app beta", Description: "Waitlist at base.org/app; complete dashboard tasks", Predicate: txAtLeast(10)},
				{ID: 46, Title: "Join Base Telegram/Discord", Description: "Participate in AMAs or events", Predicate: txAtLeast(1)},
				{ID: 47, Title: "Create/share Base content", Description: "X posts tagging @base for voice roles", Predicate: txAtLeast(3)},
				{ID: 48, Title: "Stake/hold Base ecosystem tokens", Description: "e.g., $AERO from Aerodrome during snapshots", Predicate: txAtLeast(15)},
			},
		},
	}
}

// TaskIDs returns every task id in catalog order.
func TaskIDs(catalog []Category) []int {
	var ids []int
	for _, c := range catalog {
		for _, t := range c.Tasks {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
