package indexer

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
}

func NewService(ListenAddr string, indexer *ChainIndexer) *Service {
	r := gin.Default()
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: ListenAddr,
	}
	s.engine.POST("/getProposals", s.handleGetProposals)
	s.engine.POST("/getVoters", s.handleGetVoters)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getDelegations", s.handleGetDelegations)
	s.engine.POST("/getLeader", s.handleGetLeader)
	s.engine.POST("/getAdminHistory", s.handleGetAdminHistory)
	return s
}

func (s *Service) Start() {
	s.engine.Run(s.listenAddr)
}

type ProposalInfo struct {
	Proposal Proposal `json:"proposal"`
	VoteCnt  uint64   `json:"voteCnt"`
	Votes    []Vote   `json:"votes"`
}

type GetProposalsReq struct {
	ProposalId      uint64 `json:"proposalId"`
	ProposerAddress string `json:"proposer"`
	Page            int    `json:"page"`
	PageSize        int    `json:"pageSize"`
}

type GetProposalResponse struct {
	Proposals []ProposalInfo `json:"proposals"`
	Total     uint64         `json:"total"`
}

func (s *Service) handleGetProposals(c *gin.Context) {
	var response GetProposalResponse
	response.Proposals = make([]ProposalInfo, 0)
	var err error
	var requestData GetProposalsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if requestData.ProposalId != 0 {
		proposalInfo, err := s.getProposalInfoById(requestData.ProposalId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
		c.JSON(http.StatusOK, response)
		return
	}
	proposalTotal := uint64(0)
	proposals := make([]Proposal, 0)
	if requestData.ProposerAddress != "" {
		proposals, proposalTotal, err = s.indexer.getProposalsByProposerAddr(requestData.ProposerAddress, requestData.Page, requestData.PageSize)
	} else {
		proposals, proposalTotal, err = s.indexer.getProposals(requestData.Page, requestData.PageSize)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response.Total = proposalTotal
	for _, proposal := range proposals {
		proposalInfo, err := s.getProposalInfoById(proposal.Id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Proposals = append(response.Proposals, proposalInfo)
	}
	c.JSON(http.StatusOK, response)
}

func (s *Service) getProposalInfoById(proposalId uint64) (ProposalInfo, error) {
	proposal, err := s.indexer.getProposalById(proposalId)
	if err != nil {
		return ProposalInfo{}, err
	}
	votes, total, err := s.indexer.getVotesByProposal(proposalId, 0, 1000)
	if err != nil {
		return ProposalInfo{}, err
	}
	proposalInfo := ProposalInfo{
		Proposal: proposal,
		VoteCnt:  total,
		Votes:    votes,
	}
	return proposalInfo, nil
}

type GetVotersReq struct {
	VoterId  uint64 `json:"voterId"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetVotersResponse struct {
	Voters []Voter `json:"voters"`
	Total  uint64  `json:"total"`
}

func (s *Service) handleGetVoters(c *gin.Context) {
	var response GetVotersResponse
	response.Voters = make([]Voter, 0)
	var requestData GetVotersReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.VoterId != 0 {
		voter, err := s.indexer.getVoterById(requestData.VoterId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Voters = append(response.Voters, voter)
		response.Total = 1
		c.JSON(http.StatusOK, response)
		return
	}
	voters, total, err := s.indexer.getVoters(requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Voters = voters
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetVotesReq struct {
	ProposalId   uint64 `json:"proposalId"`
	VoterAddress string `json:"voter"`
	Page         int    `json:"page"`
	PageSize     int    `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []Vote `json:"votes"`
	Total uint64 `json:"total"`
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var response GetVotesResponse
	response.Votes = make([]Vote, 0)
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var votes []Vote
	var total uint64
	var err error
	if requestData.ProposalId != 0 {
		votes, total, err = s.indexer.getVotesByProposal(requestData.ProposalId, requestData.Page, requestData.PageSize)
	} else if requestData.VoterAddress != "" {
		votes, total, err = s.indexer.getVotesByVoter(requestData.VoterAddress, requestData.Page, requestData.PageSize)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": "proposalId or voter is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Votes = votes
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetDelegationsReq struct {
	Address  string `json:"address"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetDelegationsResponse struct {
	Delegations []Delegation `json:"delegations"`
	Total       uint64       `json:"total"`
}

func (s *Service) handleGetDelegations(c *gin.Context) {
	var response GetDelegationsResponse
	response.Delegations = make([]Delegation, 0)
	var requestData GetDelegationsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	delegations, total, err := s.indexer.getDelegationsByAddr(requestData.Address, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Delegations = delegations
	response.Total = total
	c.JSON(http.StatusOK, response)
}

type GetLeaderResponse struct {
	Winner uint64 `json:"winner"`
}

func (s *Service) handleGetLeader(c *gin.Context) {
	winner, err := s.indexer.leader()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetLeaderResponse{Winner: winner})
}

type GetAdminHistoryResponse struct {
	Changes []AdminChange `json:"changes"`
}

func (s *Service) handleGetAdminHistory(c *gin.Context) {
	changes, err := s.indexer.getAdminChanges()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, GetAdminHistoryResponse{Changes: changes})
}
